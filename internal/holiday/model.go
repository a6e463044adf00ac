package holiday

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceManual    Source = "manual"
	SourceAPI       Source = "api"
	SourceGenerated Source = "generated"
)

const (
	ReasonWeekend          = "weekend"
	ReasonCustomNonWorking = "custom non-working day"
)

type Holiday struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	LocalName      string    `json:"local_name,omitempty"`
	Date           time.Time `json:"date"`
	Country        string    `json:"country"`
	IsRecurring    bool      `json:"is_recurring"`
	RecurringDay   *int      `json:"recurring_day,omitempty"`
	RecurringMonth *int      `json:"recurring_month,omitempty"`
	AllowWork      bool      `json:"allow_work"`
	IsActive       bool      `json:"is_active"`
	Source         Source    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Settings are the company level overrides applied on top of the calendar.
// CustomNonWorkingDays always wins over every other override.
type Settings struct {
	AllowWeekends         bool     `json:"allow_weekends"`
	AllowWorkOnHolidays   bool     `json:"allow_work_on_holidays"`
	CustomWorkingHolidays []string `json:"custom_working_holidays,omitempty"`
	CustomNonWorkingDays  []string `json:"custom_non_working_days,omitempty"`
}

// Merge layers o on top of s: flags are OR-ed and the date lists are joined.
func (s Settings) Merge(o Settings) Settings {
	return Settings{
		AllowWeekends:         s.AllowWeekends || o.AllowWeekends,
		AllowWorkOnHolidays:   s.AllowWorkOnHolidays || o.AllowWorkOnHolidays,
		CustomWorkingHolidays: union(s.CustomWorkingHolidays, o.CustomWorkingHolidays),
		CustomNonWorkingDays:  union(s.CustomNonWorkingDays, o.CustomNonWorkingDays),
	}
}

func union(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := slices.Clone(a)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func (s Settings) isCustomWorking(key string) bool {
	return slices.Contains(s.CustomWorkingHolidays, key)
}

func (s Settings) isCustomNonWorking(key string) bool {
	return slices.Contains(s.CustomNonWorkingDays, key)
}

type WorkingDayCheck struct {
	Date         time.Time `json:"date"`
	IsWorkingDay bool      `json:"is_working_day"`
	Holiday      *Holiday  `json:"holiday,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

type SyncResult struct {
	Country string   `json:"country"`
	Year    int      `json:"year"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats the calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
