package frequency

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/metrics"
)

// MaxScheduleIterations caps Schedule so a frequency that never moves
// forward cannot hang the caller.
const MaxScheduleIterations = 1000

// WorkingDayChecker is the calendar the calculator adjusts against.
// *holiday.Service implements it.
type WorkingDayChecker interface {
	IsWorkingDay(ctx context.Context, date time.Time, settings holiday.Settings) holiday.WorkingDayCheck
	NextWorkingDay(ctx context.Context, from time.Time, settings holiday.Settings) time.Time
}

type Calculator struct {
	holidays WorkingDayChecker
	metrics  *metrics.SchedulingMetrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewCalculator(holidays WorkingDayChecker, m *metrics.SchedulingMetrics, logger zerolog.Logger) *Calculator {
	return &Calculator{
		holidays: holidays,
		metrics:  m,
		logger:   logger.With().Str("component", "frequency_calculator").Logger(),
		now:      time.Now,
	}
}

// NextVisitDate computes the visit following lastVisit: the frequency type
// produces a candidate, then the calculation rule adjusts it.
func (c *Calculator) NextVisitDate(ctx context.Context, f *Frequency, lastVisit time.Time, opts Options) (*NextVisitCalculation, error) {
	if f == nil {
		return nil, ErrMissingFrequency
	}
	rule := f.rule()

	cand, err := candidateFor(f, lastVisit)
	if err != nil {
		c.metrics.ObserveCalculation(string(f.Type), string(rule), err)
		return nil, err
	}

	adj, err := c.adjust(ctx, rule, cand.date, opts.settingsFor(f))
	if err != nil {
		c.metrics.ObserveCalculation(string(f.Type), string(rule), err)
		return nil, err
	}
	c.metrics.ObserveCalculation(string(f.Type), string(rule), nil)
	if adj.business || adj.holiday {
		c.metrics.ObserveAdjustment(string(rule), adj.holiday)
	}

	res := &NextVisitCalculation{
		NextVisitDate:         adj.date,
		CalculationMethod:     rule,
		FrequencyApplied:      f.Type,
		BusinessDayAdjustment: adj.business,
		HolidayAdjustment:     adj.holiday,
		AdjustmentDetails:     adj.details,
		PossibleTimes:         formatClocks(cand.times),
		Metadata: Metadata{
			OriginalDate:   lastVisit,
			CandidateDate:  cand.date,
			AdjustmentDays: adj.days,
			Options:        opts,
			CalculatedAt:   c.now(),
		},
	}

	c.logger.Debug().
		Str("frequency_id", f.ID.String()).
		Str("type", string(f.Type)).
		Str("rule", string(rule)).
		Time("from", lastVisit).
		Time("next", res.NextVisitDate).
		Int("adjustment_days", adj.days).
		Msg("next visit calculated")

	return res, nil
}

// Schedule projects visits from start, feeding each result back in, and
// returns the dates that do not pass end. A cancelled context returns the
// dates computed so far together with the context error.
func (c *Calculator) Schedule(ctx context.Context, f *Frequency, start, end time.Time, opts Options) ([]time.Time, error) {
	var dates []time.Time
	current := start

	for i := 0; i < MaxScheduleIterations; i++ {
		if err := ctx.Err(); err != nil {
			return dates, err
		}

		res, err := c.NextVisitDate(ctx, f, current, opts)
		if err != nil {
			return dates, fmt.Errorf("schedule step %d: %w", i+1, err)
		}
		if res.NextVisitDate.After(end) {
			break
		}
		if !res.NextVisitDate.After(current) {
			c.logger.Warn().Str("frequency_id", f.ID.String()).Time("at", current).
				Msg("frequency does not advance, stopping schedule")
			break
		}

		dates = append(dates, res.NextVisitDate)
		current = res.NextVisitDate
	}

	return dates, nil
}

// IsValidVisitDate checks a manually proposed visit date against the
// frequency policy. Allowing weekends only lifts the weekend check: holidays
// are still rejected unless holidays are allowed too.
func (c *Calculator) IsValidVisitDate(ctx context.Context, f *Frequency, proposed time.Time, lastVisit *time.Time, opts Options) VisitDateCheck {
	if f.RespectBusinessHours || opts.RespectBusinessHours {
		check := c.holidays.IsWorkingDay(ctx, proposed, opts.settingsFor(f))
		if !check.IsWorkingDay {
			return VisitDateCheck{Reason: fmt.Sprintf("%s is not a working day: %s", holiday.DateKey(proposed), check.Reason)}
		}
	}

	if f.Type == TypeWeeklyPattern && len(f.WeeklyPattern) > 0 && !slices.Contains(f.WeeklyPattern, proposed.Weekday()) {
		return VisitDateCheck{Reason: fmt.Sprintf("%s is not part of the weekly pattern", proposed.Weekday())}
	}

	if lastVisit != nil {
		if required, ok := positive(f.DaysBetweenVisits); ok {
			if gap := daysBetween(*lastVisit, proposed); gap < required {
				return VisitDateCheck{Reason: fmt.Sprintf("only %d day(s) since the last visit, %d required", gap, required)}
			}
		}
	}

	return VisitDateCheck{IsValid: true}
}
