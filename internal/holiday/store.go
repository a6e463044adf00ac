package holiday

import (
	"context"
	"errors"
	"time"
)

var ErrHolidayNotFound = errors.New("holiday not found")

type UpsertOutcome int

const (
	Created UpsertOutcome = iota + 1
	Updated
)

// Store is the calendar the rule engine reads from.
type Store interface {
	// FindHoliday returns the active holiday on date for country, or ErrHolidayNotFound.
	FindHoliday(ctx context.Context, date time.Time, country string) (*Holiday, error)
	FindRecurringHolidays(ctx context.Context, country string) ([]Holiday, error)

	// UpsertHoliday matches on (date, country).
	UpsertHoliday(ctx context.Context, h *Holiday) (UpsertOutcome, error)
	// CreateHoliday reports false when the date is already taken for the country.
	CreateHoliday(ctx context.Context, h *Holiday) (bool, error)
	ExistsInYear(ctx context.Context, name, country string, year int) (bool, error)
}
