package frequency

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// candidate is the raw date a frequency type produces before any
// calculation rule is applied.
type candidate struct {
	date  time.Time
	times []Clock
}

func candidateFor(f *Frequency, from time.Time) (candidate, error) {
	switch f.Type {
	case TypeSimple:
		return simpleCandidate(f, from)
	case TypeHourly:
		return hourlyCandidate(f, from)
	case TypeDailyMultiple:
		return dailyMultipleCandidate(f, from)
	case TypeWeeklyPattern:
		return weeklyCandidate(f, from), nil
	case TypeCustom:
		return customCandidate(f, from), nil
	default:
		return candidate{}, fmt.Errorf("%w: %q", ErrUnsupportedFrequencyType, f.Type)
	}
}

func simpleCandidate(f *Frequency, from time.Time) (candidate, error) {
	if n, ok := positive(f.DaysBetweenVisits); ok {
		return candidate{date: from.AddDate(0, 0, n)}, nil
	}
	if v, ok := positive(f.VisitsPerMonth); ok {
		return candidate{date: from.AddDate(0, 0, daysForMonthlyVisits(v))}, nil
	}
	if v, ok := positive(f.IntervalValue); ok {
		next, err := addInterval(from, v, f.IntervalUnit)
		if err != nil {
			return candidate{}, err
		}
		return candidate{date: next}, nil
	}
	return candidate{}, fmt.Errorf("%w: SIMPLE needs days_between_visits, visits_per_month or interval_value", ErrIncompleteFrequency)
}

// daysForMonthlyVisits spreads visits over a 30 day month.
func daysForMonthlyVisits(visits int) int {
	days := int(math.Round(30 / float64(visits)))
	if days < 1 {
		return 1
	}
	return days
}

func addInterval(from time.Time, value int, unit IntervalUnit) (time.Time, error) {
	switch unit {
	case UnitHours:
		return from.Add(time.Duration(value) * time.Hour), nil
	case UnitDays:
		return from.AddDate(0, 0, value), nil
	case UnitWeeks:
		return from.AddDate(0, 0, 7*value), nil
	case UnitMonths:
		return from.AddDate(0, value, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: interval unit %q", ErrIncompleteFrequency, unit)
	}
}

func hourlyCandidate(f *Frequency, from time.Time) (candidate, error) {
	if fh, ok := f.Custom.(FixedHours); ok && len(fh.Times) > 0 {
		return nextListedTime(from, fh.Times), nil
	}
	if v, ok := positive(f.IntervalValue); ok {
		return candidate{date: from.Add(time.Duration(v) * time.Hour)}, nil
	}
	return candidate{}, fmt.Errorf("%w: HOURLY needs fixed hours or interval_value", ErrIncompleteFrequency)
}

// nextListedTime picks the first time strictly later than from's clock,
// rolling over to the earliest time of the next day.
func nextListedTime(from time.Time, times []Clock) candidate {
	sorted := sortedClocks(times)
	ref := clockOf(from)
	for _, t := range sorted {
		if t.After(ref) {
			return candidate{date: t.On(from), times: sorted}
		}
	}
	return candidate{date: sorted[0].On(from.AddDate(0, 0, 1)), times: sorted}
}

func dailyMultipleCandidate(f *Frequency, from time.Time) (candidate, error) {
	perDay, ok := positive(f.VisitsPerDay)
	if !ok || perDay < 2 || perDay > 24 {
		return candidate{}, fmt.Errorf("%w: DAILY_MULTIPLE needs visits_per_day between 2 and 24", ErrIncompleteFrequency)
	}

	times := listedTimes(f.Custom)
	if len(times) == 0 {
		step := 24 / perDay
		for i := 0; i < perDay; i++ {
			times = append(times, Clock{Hour: i * step})
		}
	}
	return nextListedTime(from, times), nil
}

func weeklyCandidate(f *Frequency, from time.Time) candidate {
	days := normalizePattern(f.WeeklyPattern)
	if len(days) == 0 {
		return candidate{date: from.AddDate(0, 0, 1)}
	}

	current := int(from.Weekday())
	for _, d := range days {
		if d > current {
			return candidate{date: from.AddDate(0, 0, d-current)}
		}
	}
	return candidate{date: from.AddDate(0, 0, 7-current+days[0])}
}

// normalizePattern drops out of range and duplicate days and sorts the rest.
func normalizePattern(pattern []time.Weekday) []int {
	seen := make(map[int]bool, len(pattern))
	var days []int
	for _, wd := range pattern {
		d := int(wd)
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func customCandidate(f *Frequency, from time.Time) candidate {
	switch cs := f.Custom.(type) {
	case SpecificTimes:
		if len(cs.Times) > 0 {
			return nextListedTime(from, cs.Times)
		}
	case FlexibleIntervals:
		if cs.IntervalHours > 0 {
			next := from.Hour() + cs.IntervalHours
			if next >= 24 {
				return candidate{date: cs.Start.On(from.AddDate(0, 0, 1)), times: cs.Times()}
			}
			y, m, d := from.Date()
			return candidate{
				date:  time.Date(y, m, d, next, from.Minute(), 0, 0, from.Location()),
				times: cs.Times(),
			}
		}
	}
	return candidate{date: from.AddDate(0, 0, 1)}
}
