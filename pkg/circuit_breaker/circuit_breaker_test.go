package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func Test_circuitBreaker_Call(t *testing.T) {
	errService := errors.New("service error")
	ok := func() error { return nil }
	fail := func() error { return errService }

	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newCircuitBreaker(10, 2*time.Second, 0.3, 3, clk.now)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	// two failures out of ten stay below the threshold
	require.ErrorIs(t, cb.Call(fail), errService)
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpenCB)
	require.False(t, called)

	clk.t = clk.t.Add(3 * time.Second)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.State())

	// a failure while half open trips again
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Open, cb.State())

	clk.t = clk.t.Add(3 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())
}

func Test_circuitBreaker_Reset(t *testing.T) {
	cb := New(2, time.Minute, 0.5, 1)
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, Open, cb.State())

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
}
