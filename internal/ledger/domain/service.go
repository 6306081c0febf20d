package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidWindow = errors.New("invalid_window")
	ErrPersistFailed = errors.New("persist_failed")
)

// Service is the nutrition ledger: durable per-user per-day totals.
type Service interface {
	// Add creates the (user, day) entry as zero if absent, adds delta
	// component-wise, and returns the new running totals. A failed persist
	// leaves the previous totals in place and returns ErrPersistFailed.
	Add(ctx context.Context, userID string, day Day, delta DayTotals) (DayTotals, error)

	// Totals returns zero totals when no entry exists; absence is not an error.
	Totals(ctx context.Context, userID string, day Day) (DayTotals, error)

	// ResetDay overwrites the entry with explicit zeros.
	ResetDay(ctx context.Context, userID string, day Day) error

	// WeeklyAverage averages Totals over the windowDays dates ending at end
	// inclusive, dividing by the count of dates that have an entry present.
	WeeklyAverage(ctx context.Context, userID string, end Day, windowDays int) (WeekSummary, error)
}
