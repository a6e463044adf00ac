package frequency

import (
	"fmt"
	"strings"
)

const minNameLength = 3

type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks that f carries what its type needs. It never fails;
// callers must refuse to save a frequency whose result has errors.
func Validate(f *Frequency) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}, Recommendations: []string{}}
	if f == nil {
		res.errorf("frequency is required")
		return res
	}

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		res.errorf("name is required")
	case len([]rune(name)) < minNameLength:
		res.errorf("name must be at least %d characters", minNameLength)
	}

	if f.Rule != "" && !f.Rule.Valid() {
		res.errorf("unsupported calculation rule %q", f.Rule)
	}

	switch f.Type {
	case "":
		res.errorf("frequency type is required")
	case TypeSimple:
		validateSimple(f, &res)
	case TypeHourly:
		validateHourly(f, &res)
	case TypeDailyMultiple:
		validateDailyMultiple(f, &res)
	case TypeWeeklyPattern:
		validateWeekly(f, &res)
	case TypeCustom:
		validateCustom(f, &res)
	default:
		res.errorf("unsupported frequency type %q", f.Type)
	}

	if f.DaysBetweenVisits != nil && *f.DaysBetweenVisits > 365 {
		res.warnf("days between visits is more than a year (%d)", *f.DaysBetweenVisits)
	}
	if f.AllowHolidays {
		res.warnf("visits may be scheduled on public holidays")
	}
	if !f.RespectBusinessHours && f.AllowWeekends {
		res.Recommendations = append(res.Recommendations,
			"consider respecting business hours when weekend visits are allowed")
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func validateSimple(f *Frequency, res *ValidationResult) {
	_, hasDays := positive(f.DaysBetweenVisits)
	_, hasMonthly := positive(f.VisitsPerMonth)
	_, hasInterval := positive(f.IntervalValue)
	if !hasDays && !hasMonthly && !hasInterval {
		res.errorf("SIMPLE frequencies need days between visits, visits per month or an interval")
	}

	if f.DaysBetweenVisits != nil && *f.DaysBetweenVisits < 1 {
		res.errorf("days between visits must be at least 1")
	}
	if f.VisitsPerMonth != nil && (*f.VisitsPerMonth < 1 || *f.VisitsPerMonth > 31) {
		res.errorf("visits per month must be between 1 and 31")
	}
	if f.IntervalValue != nil {
		if *f.IntervalValue < 1 {
			res.errorf("interval value must be at least 1")
		}
		if !f.IntervalUnit.Valid() {
			res.errorf("interval unit must be one of HOURS, DAYS, WEEKS, MONTHS")
		}
	}
}

func validateHourly(f *Frequency, res *ValidationResult) {
	switch {
	case f.IntervalValue == nil:
		res.errorf("HOURLY frequencies need an interval value")
	case *f.IntervalValue < 1:
		res.errorf("interval value must be at least 1 hour")
	}
	if f.Custom == nil {
		res.errorf("HOURLY frequencies need a custom schedule")
		return
	}
	validateSchedule(f.Custom, res)
}

func validateDailyMultiple(f *Frequency, res *ValidationResult) {
	if f.VisitsPerDay == nil || *f.VisitsPerDay < 2 || *f.VisitsPerDay > 24 {
		res.errorf("DAILY_MULTIPLE frequencies need between 2 and 24 visits per day")
	}
	if f.Custom != nil {
		validateSchedule(f.Custom, res)
	}
}

func validateWeekly(f *Frequency, res *ValidationResult) {
	if len(f.WeeklyPattern) == 0 {
		res.errorf("WEEKLY_PATTERN frequencies need at least one weekday")
		return
	}

	seen := make(map[int]bool, len(f.WeeklyPattern))
	duplicates := false
	for _, wd := range f.WeeklyPattern {
		d := int(wd)
		if d < 0 || d > 6 {
			res.errorf("weekday %d is out of range (0=Sunday..6=Saturday)", d)
			continue
		}
		if seen[d] {
			duplicates = true
		}
		seen[d] = true
	}

	if duplicates {
		res.warnf("weekly pattern repeats weekdays")
	}
	if len(seen) == 7 || len(f.WeeklyPattern) > 7 {
		res.warnf("weekly pattern covers every day, a daily SIMPLE frequency is equivalent")
	}
}

func validateCustom(f *Frequency, res *ValidationResult) {
	if f.Custom == nil {
		res.errorf("CUSTOM frequencies need a custom schedule")
		return
	}
	validateSchedule(f.Custom, res)
}

func validateSchedule(cs CustomSchedule, res *ValidationResult) {
	switch s := cs.(type) {
	case FixedHours, SpecificTimes:
		times := listedTimes(s)
		if len(times) == 0 {
			res.errorf("%s schedules need at least one time", cs.ScheduleType())
		}
		for _, t := range times {
			if !t.Valid() {
				res.errorf("invalid time %s", t)
			}
		}
	case FlexibleIntervals:
		if s.IntervalHours < 1 || s.IntervalHours > 23 {
			res.errorf("flexible interval must be between 1 and 23 hours")
		}
		if !s.Start.Valid() {
			res.errorf("invalid start time %s", s.Start)
		}
	default:
		res.errorf("unsupported custom schedule type %q", cs.ScheduleType())
	}
}
