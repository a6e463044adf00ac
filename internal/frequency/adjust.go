package frequency

import (
	"context"
	"fmt"
	"time"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
)

type adjustment struct {
	date     time.Time
	business bool
	holiday  bool
	days     int
	details  string
}

func (c *Calculator) adjust(ctx context.Context, rule Rule, cand time.Time, settings holiday.Settings) (adjustment, error) {
	switch rule {
	case RuleExactDays, RuleHourlyPattern, RuleDailyMultiple, RuleWeeklyPattern, RuleCustomSchedule:
		return adjustment{date: cand}, nil
	case RuleNextBusinessDay:
		return c.nextBusinessDay(ctx, cand, settings), nil
	case RuleSameDayNextMonth:
		return sameDayNextMonth(cand), nil
	case RuleSmartFrequency:
		return c.smartFrequency(ctx, cand, settings), nil
	default:
		return adjustment{}, fmt.Errorf("%w: %q", ErrUnsupportedRule, rule)
	}
}

func (c *Calculator) nextBusinessDay(ctx context.Context, cand time.Time, settings holiday.Settings) adjustment {
	check := c.holidays.IsWorkingDay(ctx, cand, settings)
	if check.IsWorkingDay {
		return adjustment{date: cand}
	}

	next := withClock(c.holidays.NextWorkingDay(ctx, cand, settings), cand)
	return adjustment{
		date:     next,
		business: true,
		holiday:  check.Holiday != nil,
		days:     daysBetween(cand, next),
		details: fmt.Sprintf("NEXT_BUSINESS_DAY: %s is not a working day (%s), moved to %s",
			holiday.DateKey(cand), check.Reason, holiday.DateKey(next)),
	}
}

func sameDayNextMonth(cand time.Time) adjustment {
	next, clamped := addMonthClamped(cand)
	adj := adjustment{
		date:    next,
		days:    daysBetween(cand, next),
		details: fmt.Sprintf("SAME_DAY_NEXT_MONTH: %s moved to %s", holiday.DateKey(cand), holiday.DateKey(next)),
	}
	if clamped {
		adj.details += fmt.Sprintf(" (day %d does not exist in %s, clamped to the last day of the month)",
			cand.Day(), next.Month())
	}
	return adj
}

// addMonthClamped moves t one month ahead keeping the day of month, or the
// last day of the target month when that day does not exist.
func addMonthClamped(t time.Time) (time.Time, bool) {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	last := firstOfTarget.AddDate(0, 1, -1).Day()

	clamped := false
	if d > last {
		d = last
		clamped = true
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), clamped
}

func (c *Calculator) smartFrequency(ctx context.Context, cand time.Time, settings holiday.Settings) adjustment {
	date := cand
	attempts := 0
	hitHoliday := false
	for attempts < holiday.MaxLookahead {
		check := c.holidays.IsWorkingDay(ctx, date, settings)
		if check.IsWorkingDay {
			break
		}
		if check.Holiday != nil {
			hitHoliday = true
		}
		date = date.AddDate(0, 0, 1)
		attempts++
	}

	if attempts == 0 {
		return adjustment{date: cand}
	}

	details := fmt.Sprintf("SMART_FREQUENCY: adjusted by %d day(s) from %s to %s",
		attempts, holiday.DateKey(cand), holiday.DateKey(date))
	if attempts == holiday.MaxLookahead {
		details += fmt.Sprintf(", stopped after %d attempts", holiday.MaxLookahead)
	}
	return adjustment{date: date, business: true, holiday: hitHoliday, days: attempts, details: details}
}

// withClock puts src's time of day on day's calendar date.
func withClock(day, src time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, src.Hour(), src.Minute(), src.Second(), src.Nanosecond(), src.Location())
}

// daysBetween counts calendar days from a to b, ignoring time of day and DST.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
