package frequency

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type frequencyJSON struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Type                 Type            `json:"frequency_type"`
	Rule                 Rule            `json:"next_date_calculation_rule"`
	DaysBetweenVisits    *int            `json:"days_between_visits,omitempty"`
	VisitsPerMonth       *int            `json:"visits_per_month,omitempty"`
	IntervalValue        *int            `json:"interval_value,omitempty"`
	IntervalUnit         IntervalUnit    `json:"interval_unit,omitempty"`
	VisitsPerDay         *int            `json:"visits_per_day,omitempty"`
	WeeklyPattern        []time.Weekday  `json:"weekly_pattern,omitempty"`
	CustomSchedule       json.RawMessage `json:"custom_schedule,omitempty"`
	RespectBusinessHours bool            `json:"respect_business_hours"`
	AllowWeekends        bool            `json:"allow_weekends"`
	AllowHolidays        bool            `json:"allow_holidays"`
	IsActive             bool            `json:"is_active"`
}

func (f Frequency) MarshalJSON() ([]byte, error) {
	out := frequencyJSON{
		ID:                   f.ID,
		Name:                 f.Name,
		Description:          f.Description,
		Type:                 f.Type,
		Rule:                 f.Rule,
		DaysBetweenVisits:    f.DaysBetweenVisits,
		VisitsPerMonth:       f.VisitsPerMonth,
		IntervalValue:        f.IntervalValue,
		IntervalUnit:         f.IntervalUnit,
		VisitsPerDay:         f.VisitsPerDay,
		WeeklyPattern:        f.WeeklyPattern,
		RespectBusinessHours: f.RespectBusinessHours,
		AllowWeekends:        f.AllowWeekends,
		AllowHolidays:        f.AllowHolidays,
		IsActive:             f.IsActive,
	}
	if f.Custom != nil {
		raw, err := MarshalSchedule(f.Custom)
		if err != nil {
			return nil, err
		}
		out.CustomSchedule = raw
	}
	return json.Marshal(out)
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	var in frequencyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	custom, err := UnmarshalSchedule(in.CustomSchedule)
	if err != nil {
		return err
	}
	*f = Frequency{
		ID:                   in.ID,
		Name:                 in.Name,
		Description:          in.Description,
		Type:                 in.Type,
		Rule:                 in.Rule,
		DaysBetweenVisits:    in.DaysBetweenVisits,
		VisitsPerMonth:       in.VisitsPerMonth,
		IntervalValue:        in.IntervalValue,
		IntervalUnit:         in.IntervalUnit,
		VisitsPerDay:         in.VisitsPerDay,
		WeeklyPattern:        in.WeeklyPattern,
		Custom:               custom,
		RespectBusinessHours: in.RespectBusinessHours,
		AllowWeekends:        in.AllowWeekends,
		AllowHolidays:        in.AllowHolidays,
		IsActive:             in.IsActive,
	}
	return nil
}
