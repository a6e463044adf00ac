package frequency

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
)

type Type string

const (
	TypeSimple        Type = "SIMPLE"
	TypeHourly        Type = "HOURLY"
	TypeDailyMultiple Type = "DAILY_MULTIPLE"
	TypeWeeklyPattern Type = "WEEKLY_PATTERN"
	TypeCustom        Type = "CUSTOM"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSimple, TypeHourly, TypeDailyMultiple, TypeWeeklyPattern, TypeCustom:
		return true
	}
	return false
}

// Rule is the post-calculation date adjustment. It is independent of Type.
type Rule string

const (
	RuleExactDays        Rule = "EXACT_DAYS"
	RuleNextBusinessDay  Rule = "NEXT_BUSINESS_DAY"
	RuleSameDayNextMonth Rule = "SAME_DAY_NEXT_MONTH"
	RuleSmartFrequency   Rule = "SMART_FREQUENCY"
	RuleHourlyPattern    Rule = "HOURLY_PATTERN"
	RuleDailyMultiple    Rule = "DAILY_MULTIPLE"
	RuleWeeklyPattern    Rule = "WEEKLY_PATTERN"
	RuleCustomSchedule   Rule = "CUSTOM_SCHEDULE"
)

func (r Rule) Valid() bool {
	switch r {
	case RuleExactDays, RuleNextBusinessDay, RuleSameDayNextMonth, RuleSmartFrequency,
		RuleHourlyPattern, RuleDailyMultiple, RuleWeeklyPattern, RuleCustomSchedule:
		return true
	}
	return false
}

type IntervalUnit string

const (
	UnitHours  IntervalUnit = "HOURS"
	UnitDays   IntervalUnit = "DAYS"
	UnitWeeks  IntervalUnit = "WEEKS"
	UnitMonths IntervalUnit = "MONTHS"
)

func (u IntervalUnit) Valid() bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}

var (
	ErrMissingFrequency         = errors.New("frequency is required")
	ErrUnsupportedFrequencyType = errors.New("unsupported frequency type")
	ErrUnsupportedRule          = errors.New("unsupported calculation rule")
	ErrIncompleteFrequency      = errors.New("frequency is missing required parameters")
)

// IsConfigurationError reports whether err comes from a frequency that
// cannot be scheduled as configured.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingFrequency) ||
		errors.Is(err, ErrUnsupportedFrequencyType) ||
		errors.Is(err, ErrUnsupportedRule) ||
		errors.Is(err, ErrIncompleteFrequency)
}

// Frequency is a reusable visit scheduling policy. Only the parameters
// relevant to Type are expected to be set.
type Frequency struct {
	ID          uuid.UUID
	Name        string
	Description string
	Type        Type
	Rule        Rule

	DaysBetweenVisits *int
	VisitsPerMonth    *int
	IntervalValue     *int
	IntervalUnit      IntervalUnit
	VisitsPerDay      *int
	WeeklyPattern     []time.Weekday
	Custom            CustomSchedule

	RespectBusinessHours bool
	AllowWeekends        bool
	AllowHolidays        bool
	IsActive             bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Frequency) rule() Rule {
	if f.Rule == "" {
		return RuleExactDays
	}
	return f.Rule
}

// Options are per request overrides layered on top of the frequency flags.
type Options struct {
	Settings             holiday.Settings `json:"settings"`
	AllowWeekends        bool             `json:"allow_weekends"`
	AllowHolidays        bool             `json:"allow_holidays"`
	RespectBusinessHours bool             `json:"respect_business_hours"`
}

// settingsFor merges the company settings with the frequency and request
// flags. This is the only place weekend and holiday permissions are decided.
func (o Options) settingsFor(f *Frequency) holiday.Settings {
	s := o.Settings
	s.AllowWeekends = s.AllowWeekends || o.AllowWeekends || f.AllowWeekends
	s.AllowWorkOnHolidays = s.AllowWorkOnHolidays || o.AllowHolidays || f.AllowHolidays
	return s
}

type NextVisitCalculation struct {
	NextVisitDate         time.Time `json:"next_visit_date"`
	CalculationMethod     Rule      `json:"calculation_method"`
	FrequencyApplied      Type      `json:"frequency_applied"`
	BusinessDayAdjustment bool      `json:"business_day_adjustment"`
	HolidayAdjustment     bool      `json:"holiday_adjustment"`
	AdjustmentDetails     string    `json:"adjustment_details,omitempty"`
	PossibleTimes         []string  `json:"possible_times"`
	Metadata              Metadata  `json:"metadata"`
}

type Metadata struct {
	OriginalDate   time.Time `json:"original_date"`
	CandidateDate  time.Time `json:"candidate_date"`
	AdjustmentDays int       `json:"adjustment_days"`
	Options        Options   `json:"options"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

type VisitDateCheck struct {
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason,omitempty"`
}

func positive(p *int) (int, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}
