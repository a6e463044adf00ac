package frequency

import "math"

type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

type FrequencyStats struct {
	EstimatedVisitsPerMonth float64    `json:"estimated_visits_per_month"`
	EstimatedVisitsPerYear  float64    `json:"estimated_visits_per_year"`
	AverageDaysBetween      float64    `json:"average_days_between"`
	Complexity              Complexity `json:"complexity"`
}

// Stats summarises how often f schedules visits. It uses 30 day months and
// does not consult the calendar.
func Stats(f *Frequency) FrequencyStats {
	switch f.Type {
	case TypeSimple:
		st := simpleStats(f)
		st.Complexity = ComplexityLow
		return st
	case TypeWeeklyPattern:
		perWeek := float64(len(normalizePattern(f.WeeklyPattern)))
		if perWeek == 0 {
			return FrequencyStats{Complexity: ComplexityMedium}
		}
		return FrequencyStats{
			EstimatedVisitsPerMonth: round2(perWeek * 30 / 7),
			EstimatedVisitsPerYear:  round2(perWeek * 52),
			AverageDaysBetween:      round2(7 / perWeek),
			Complexity:              ComplexityMedium,
		}
	case TypeHourly, TypeDailyMultiple, TypeCustom:
		return perDayStats(visitsPerDay(f))
	default:
		return FrequencyStats{Complexity: ComplexityLow}
	}
}

func simpleStats(f *Frequency) FrequencyStats {
	if v, ok := positive(f.VisitsPerMonth); ok && f.DaysBetweenVisits == nil {
		return FrequencyStats{
			EstimatedVisitsPerMonth: float64(v),
			EstimatedVisitsPerYear:  float64(v * 12),
			AverageDaysBetween:      round2(30 / float64(v)),
		}
	}

	var days float64
	if n, ok := positive(f.DaysBetweenVisits); ok {
		days = float64(n)
	} else if v, ok := positive(f.IntervalValue); ok {
		switch f.IntervalUnit {
		case UnitHours:
			days = float64(v) / 24
		case UnitDays:
			days = float64(v)
		case UnitWeeks:
			days = float64(v * 7)
		case UnitMonths:
			days = float64(v * 30)
		}
	}
	if days == 0 {
		return FrequencyStats{}
	}
	return FrequencyStats{
		EstimatedVisitsPerMonth: round2(30 / days),
		EstimatedVisitsPerYear:  round2(365 / days),
		AverageDaysBetween:      round2(days),
	}
}

func visitsPerDay(f *Frequency) float64 {
	if times := listedTimes(f.Custom); len(times) > 0 {
		return float64(len(times))
	}
	if fi, ok := f.Custom.(FlexibleIntervals); ok {
		return float64(len(fi.Times()))
	}
	switch f.Type {
	case TypeHourly:
		if v, ok := positive(f.IntervalValue); ok {
			return 24 / float64(v)
		}
	case TypeDailyMultiple:
		if v, ok := positive(f.VisitsPerDay); ok {
			return float64(v)
		}
	}
	return 1
}

func perDayStats(perDay float64) FrequencyStats {
	return FrequencyStats{
		EstimatedVisitsPerMonth: round2(perDay * 30),
		EstimatedVisitsPerYear:  round2(perDay * 365),
		AverageDaysBetween:      round2(1 / perDay),
		Complexity:              ComplexityHigh,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
