package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(Config{Secret: "s3cret", TokenTTL: time.Hour})

	want := Profile{ID: 42, Email: "admin@library.com", Role: RoleAdmin}
	token, exp, err := iss.Issue(want)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := iss.Parse(token)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestIssuer_Parse(t *testing.T) {
	t.Parallel()
	iss := NewIssuer(Config{Secret: "s3cret", TokenTTL: time.Hour})
	p := Profile{ID: 1, Email: "jane@uni.edu", Role: RoleStudent}

	expired := NewIssuer(Config{Secret: "s3cret", TokenTTL: time.Hour})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(p)
	require.NoError(t, err)

	foreign := NewIssuer(Config{Secret: "other", TokenTTL: time.Hour})
	foreignToken, _, err := foreign.Issue(p)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "wrong key", token: foreignToken, wantErr: ErrTokenInvalid},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrTokenInvalid},
		{name: "alg none", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJpZCI6MSwicm9sZSI6ImFkbWluIn0.", wantErr: ErrTokenInvalid},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := iss.Parse(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := FromContext(ctx)
	require.ErrorIs(t, err, ErrNoProfile)
	require.False(t, IsAdmin(ctx))

	ctx = SetAuthContext(ctx, Profile{ID: 1, Role: RoleAdmin})
	require.True(t, IsAdmin(ctx))
	p, err := FromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, p.ID)
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	require.NotEqual(t, "admin123", hash)

	require.True(t, CheckPassword(hash, "admin123"))
	require.False(t, CheckPassword(hash, "admin124"))
	require.False(t, CheckPassword("", "admin123"))
}
