package service

import (
	"math"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
)

const day = 24 * time.Hour

// OverdueDays counts started days past due; zero when at is not after due.
func OverdueDays(due, at time.Time) int {
	if !at.After(due) {
		return 0
	}
	late := at.Sub(due)
	days := late / day
	if late%day != 0 {
		days++
	}
	return int(days)
}

// Fine is the one fine formula. It is applied when a return persists
// fine_amount and when listings estimate the fine of an open record.
func Fine(due, at time.Time, perDay float64) (amount float64, overdueDays int) {
	overdueDays = OverdueDays(due, at)
	return math.Round(float64(overdueDays)*perDay*100) / 100, overdueDays
}

// CurrentStatus derives the read-time status; open is the label used for
// records that are neither returned nor overdue.
func CurrentStatus(returnDate *time.Time, due, at time.Time, open model.CurrentStatus) model.CurrentStatus {
	switch {
	case returnDate != nil:
		return model.CurrentReturned
	case at.After(due):
		return model.CurrentOverdue
	default:
		return open
	}
}
