package frequency

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ScheduleType string

const (
	ScheduleFixedHours        ScheduleType = "FIXED_HOURS"
	ScheduleFlexibleIntervals ScheduleType = "FLEXIBLE_INTERVALS"
	ScheduleSpecificTimes     ScheduleType = "SPECIFIC_TIMES"
)

// CustomSchedule is one of FixedHours, FlexibleIntervals, SpecificTimes or
// UnknownSchedule.
type CustomSchedule interface {
	ScheduleType() ScheduleType
	isCustomSchedule()
}

// FixedHours visits at the listed times every day.
type FixedHours struct {
	Times []Clock
}

// FlexibleIntervals visits every IntervalHours, restarting at Start each day.
type FlexibleIntervals struct {
	Start         Clock
	IntervalHours int
}

// SpecificTimes visits at the listed times every day.
type SpecificTimes struct {
	Times []Clock
}

// UnknownSchedule keeps a schedule type this version does not understand,
// so validation can report it instead of the decoder failing.
type UnknownSchedule struct {
	Type ScheduleType
}

func (FixedHours) ScheduleType() ScheduleType        { return ScheduleFixedHours }
func (FlexibleIntervals) ScheduleType() ScheduleType { return ScheduleFlexibleIntervals }
func (SpecificTimes) ScheduleType() ScheduleType     { return ScheduleSpecificTimes }
func (u UnknownSchedule) ScheduleType() ScheduleType { return u.Type }

func (FixedHours) isCustomSchedule()        {}
func (FlexibleIntervals) isCustomSchedule() {}
func (SpecificTimes) isCustomSchedule()     {}
func (UnknownSchedule) isCustomSchedule()   {}

// Times lists the clock times FlexibleIntervals produces in one day.
func (f FlexibleIntervals) Times() []Clock {
	if f.IntervalHours < 1 {
		return []Clock{f.Start}
	}
	var out []Clock
	for h := f.Start.Hour; h < 24; h += f.IntervalHours {
		out = append(out, Clock{Hour: h, Minute: f.Start.Minute})
	}
	return out
}

// listedTimes returns the explicit time list of a FixedHours or
// SpecificTimes schedule.
func listedTimes(cs CustomSchedule) []Clock {
	switch s := cs.(type) {
	case FixedHours:
		return s.Times
	case SpecificTimes:
		return s.Times
	}
	return nil
}

type scheduleEnvelope struct {
	ScheduleType  ScheduleType `json:"schedule_type"`
	FixedTimes    []Clock      `json:"fixed_times,omitempty"`
	StartTime     *Clock       `json:"start_time,omitempty"`
	IntervalHours int          `json:"interval_hours,omitempty"`
}

// MarshalSchedule encodes cs as a tagged JSON object. A nil schedule
// encodes as null.
func MarshalSchedule(cs CustomSchedule) ([]byte, error) {
	if cs == nil {
		return []byte("null"), nil
	}

	env := scheduleEnvelope{ScheduleType: cs.ScheduleType()}
	switch s := cs.(type) {
	case FixedHours:
		env.FixedTimes = s.Times
	case SpecificTimes:
		env.FixedTimes = s.Times
	case FlexibleIntervals:
		start := s.Start
		env.StartTime = &start
		env.IntervalHours = s.IntervalHours
	}
	return json.Marshal(env)
}

// UnmarshalSchedule decodes the tagged JSON object written by
// MarshalSchedule. Empty input and null decode to a nil schedule.
func UnmarshalSchedule(data []byte) (CustomSchedule, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var env scheduleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode custom schedule: %w", err)
	}

	switch env.ScheduleType {
	case ScheduleFixedHours:
		return FixedHours{Times: env.FixedTimes}, nil
	case ScheduleSpecificTimes:
		return SpecificTimes{Times: env.FixedTimes}, nil
	case ScheduleFlexibleIntervals:
		fi := FlexibleIntervals{IntervalHours: env.IntervalHours}
		if env.StartTime != nil {
			fi.Start = *env.StartTime
		}
		return fi, nil
	default:
		return UnknownSchedule{Type: env.ScheduleType}, nil
	}
}
