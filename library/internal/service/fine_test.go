package service

import (
	"testing"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/stretchr/testify/require"
)

func TestFine(t *testing.T) {
	t.Parallel()
	due := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		at       time.Time
		perDay   float64
		wantFine float64
		wantDays int
	}{
		{name: "before due", at: due.Add(-time.Hour), perDay: 1, wantFine: 0, wantDays: 0},
		{name: "exactly due", at: due, perDay: 1, wantFine: 0, wantDays: 0},
		{name: "one second late", at: due.Add(time.Second), perDay: 1, wantFine: 1, wantDays: 1},
		{name: "six days late", at: due.Add(6 * day), perDay: 1, wantFine: 6, wantDays: 6},
		{name: "custom rate", at: due.Add(2*day + time.Hour), perDay: 0.25, wantFine: 0.75, wantDays: 3},
		{name: "rounded to cents", at: due.Add(3 * day), perDay: 0.1, wantFine: 0.3, wantDays: 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fine, days := Fine(due, tt.at, tt.perDay)
			require.Equal(t, tt.wantFine, fine)
			require.Equal(t, tt.wantDays, days)
		})
	}
}

func TestCurrentStatus(t *testing.T) {
	t.Parallel()
	due := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	returned := due.Add(48 * time.Hour)

	require.Equal(t, model.CurrentReturned, CurrentStatus(&returned, due, due.Add(10*day), model.CurrentActive))
	require.Equal(t, model.CurrentOverdue, CurrentStatus(nil, due, due.Add(time.Minute), model.CurrentActive))
	require.Equal(t, model.CurrentActive, CurrentStatus(nil, due, due, model.CurrentActive))
	require.Equal(t, model.CurrentBorrowed, CurrentStatus(nil, due, due.Add(-day), model.CurrentBorrowed))
}
