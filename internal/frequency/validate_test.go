package frequency_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
)

func TestValidate(t *testing.T) {
	hourlySchedule := frequency.FixedHours{Times: clocks("08:00", "20:00")}
	allWeek := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

	tests := []struct {
		name        string
		freq        frequency.Frequency
		wantValid   bool
		wantError   string
		wantWarning string
		wantAdvice  bool
	}{
		{
			name:      "valid simple",
			freq:      frequency.Frequency{Name: "Weekly nursing", Type: frequency.TypeSimple, DaysBetweenVisits: intp(7), RespectBusinessHours: true},
			wantValid: true,
		},
		{
			name:      "missing name",
			freq:      frequency.Frequency{Type: frequency.TypeSimple, DaysBetweenVisits: intp(7)},
			wantError: "name is required",
		},
		{
			name:      "short name",
			freq:      frequency.Frequency{Name: "ab", Type: frequency.TypeSimple, DaysBetweenVisits: intp(7)},
			wantError: "at least 3 characters",
		},
		{
			name:      "missing type",
			freq:      frequency.Frequency{Name: "Nursing"},
			wantError: "frequency type is required",
		},
		{
			name:      "unknown type",
			freq:      frequency.Frequency{Name: "Nursing", Type: "MONTHLY"},
			wantError: "unsupported frequency type",
		},
		{
			name:      "unknown rule",
			freq:      frequency.Frequency{Name: "Nursing", Type: frequency.TypeSimple, DaysBetweenVisits: intp(7), Rule: "LUNAR"},
			wantError: "unsupported calculation rule",
		},
		{
			name:      "simple without parameters",
			freq:      frequency.Frequency{Name: "Nursing", Type: frequency.TypeSimple},
			wantError: "SIMPLE frequencies need",
		},
		{
			name:      "simple interval without unit",
			freq:      frequency.Frequency{Name: "Nursing", Type: frequency.TypeSimple, IntervalValue: intp(2)},
			wantError: "interval unit",
		},
		{
			name:      "hourly without custom schedule",
			freq:      frequency.Frequency{Name: "Insulin", Type: frequency.TypeHourly, IntervalValue: intp(8)},
			wantError: "HOURLY frequencies need a custom schedule",
		},
		{
			name:      "hourly with zero interval",
			freq:      frequency.Frequency{Name: "Insulin", Type: frequency.TypeHourly, IntervalValue: intp(0), Custom: hourlySchedule},
			wantError: "at least 1 hour",
		},
		{
			name:      "valid hourly",
			freq:      frequency.Frequency{Name: "Insulin", Type: frequency.TypeHourly, IntervalValue: intp(12), Custom: hourlySchedule, RespectBusinessHours: true},
			wantValid: true,
		},
		{
			name:      "daily multiple below two",
			freq:      frequency.Frequency{Name: "Wound care", Type: frequency.TypeDailyMultiple, VisitsPerDay: intp(1)},
			wantError: "between 2 and 24",
		},
		{
			name:      "daily multiple above twenty four",
			freq:      frequency.Frequency{Name: "Wound care", Type: frequency.TypeDailyMultiple, VisitsPerDay: intp(25)},
			wantError: "between 2 and 24",
		},
		{
			name:      "empty weekly pattern",
			freq:      frequency.Frequency{Name: "Physio", Type: frequency.TypeWeeklyPattern},
			wantError: "at least one weekday",
		},
		{
			name:      "weekday out of range",
			freq:      frequency.Frequency{Name: "Physio", Type: frequency.TypeWeeklyPattern, WeeklyPattern: []time.Weekday{time.Monday, 9}},
			wantError: "weekday 9 is out of range",
		},
		{
			name:        "duplicate weekdays",
			freq:        frequency.Frequency{Name: "Physio", Type: frequency.TypeWeeklyPattern, WeeklyPattern: []time.Weekday{time.Monday, time.Monday}},
			wantValid:   true,
			wantWarning: "repeats weekdays",
		},
		{
			name:        "every day of the week",
			freq:        frequency.Frequency{Name: "Physio", Type: frequency.TypeWeeklyPattern, WeeklyPattern: allWeek},
			wantValid:   true,
			wantWarning: "covers every day",
		},
		{
			name:      "custom without schedule",
			freq:      frequency.Frequency{Name: "Palliative", Type: frequency.TypeCustom},
			wantError: "CUSTOM frequencies need a custom schedule",
		},
		{
			name:      "custom flexible interval out of range",
			freq:      frequency.Frequency{Name: "Palliative", Type: frequency.TypeCustom, Custom: frequency.FlexibleIntervals{Start: frequency.MustParseClock("08:00")}},
			wantError: "between 1 and 23 hours",
		},
		{
			name:      "custom specific times empty",
			freq:      frequency.Frequency{Name: "Palliative", Type: frequency.TypeCustom, Custom: frequency.SpecificTimes{}},
			wantError: "at least one time",
		},
		{
			name:        "very long gap",
			freq:        frequency.Frequency{Name: "Annual review", Type: frequency.TypeSimple, DaysBetweenVisits: intp(400)},
			wantValid:   true,
			wantWarning: "more than a year",
		},
		{
			name:        "holidays allowed",
			freq:        frequency.Frequency{Name: "Nursing", Type: frequency.TypeSimple, DaysBetweenVisits: intp(7), AllowHolidays: true},
			wantValid:   true,
			wantWarning: "public holidays",
		},
		{
			name:       "weekends without business hours",
			freq:       frequency.Frequency{Name: "Nursing", Type: frequency.TypeSimple, DaysBetweenVisits: intp(7), AllowWeekends: true},
			wantValid:  true,
			wantAdvice: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := frequency.Validate(&tt.freq)

			assert.Equal(t, tt.wantValid, res.IsValid)
			require.NotNil(t, res.Errors)
			require.NotNil(t, res.Warnings)
			require.NotNil(t, res.Recommendations)

			if tt.wantError != "" {
				require.NotEmpty(t, res.Errors)
				assert.Contains(t, joined(res.Errors), tt.wantError)
			} else {
				assert.Empty(t, res.Errors)
			}
			if tt.wantWarning != "" {
				assert.Contains(t, joined(res.Warnings), tt.wantWarning)
			}
			assert.Equal(t, tt.wantAdvice, len(res.Recommendations) > 0)
		})
	}
}

func TestValidateNil(t *testing.T) {
	res := frequency.Validate(nil)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 1)
}

func joined(ss []string) string {
	return strings.Join(ss, "\n")
}
