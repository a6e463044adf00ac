package holiday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/metrics"
)

// MaxLookahead bounds how many consecutive days are probed when searching
// for a working day.
const MaxLookahead = 14

// Service answers working-day questions for one country and keeps the
// national calendar in sync with the public feed.
type Service struct {
	store   Store
	feed    Feed
	country string
	metrics *metrics.SchedulingMetrics
	logger  zerolog.Logger
}

func NewService(store Store, feed Feed, country string, m *metrics.SchedulingMetrics, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		feed:    feed,
		country: country,
		metrics: m,
		logger:  logger.With().Str("component", "holiday_service").Str("country", country).Logger(),
	}
}

func (s *Service) Country() string { return s.country }

// IsWorkingDay reports whether date (time of day ignored) can host a visit.
// A failing calendar lookup is treated as "no holiday".
func (s *Service) IsWorkingDay(ctx context.Context, date time.Time, settings Settings) WorkingDayCheck {
	day := DateOnly(date)
	key := DateKey(day)
	check := WorkingDayCheck{Date: day, IsWorkingDay: true}

	if !settings.AllowWeekends && isWeekend(day) {
		check.IsWorkingDay = false
		check.Reason = ReasonWeekend
		return check
	}

	h, err := s.store.FindHoliday(ctx, day, s.country)
	if err != nil {
		if !errors.Is(err, ErrHolidayNotFound) {
			s.metrics.ObserveCalendarFailure()
			s.logger.Warn().Err(err).Str("date", key).Msg("holiday lookup failed, assuming working day")
		}
		h = nil
	}

	if h == nil {
		if settings.isCustomNonWorking(key) {
			check.IsWorkingDay = false
			check.Reason = ReasonCustomNonWorking
		}
		return check
	}

	working := false
	if settings.AllowWorkOnHolidays {
		working = true
	}
	if h.AllowWork {
		working = true
	}
	if settings.isCustomWorking(key) {
		working = true
	}
	if settings.isCustomNonWorking(key) {
		working = false
	}

	check.Holiday = h
	check.IsWorkingDay = working
	if !working {
		check.Reason = h.Name
	}
	return check
}

// NextWorkingDay returns the first working day strictly after from. When
// MaxLookahead days in a row are closed it gives up and returns from+1.
func (s *Service) NextWorkingDay(ctx context.Context, from time.Time, settings Settings) time.Time {
	start := DateOnly(from)
	for i := 1; i <= MaxLookahead; i++ {
		candidate := start.AddDate(0, 0, i)
		if s.IsWorkingDay(ctx, candidate, settings).IsWorkingDay {
			return candidate
		}
	}

	s.logger.Warn().Str("from", DateKey(start)).Int("attempts", MaxLookahead).
		Msg("no working day found, falling back to next calendar day")
	return start.AddDate(0, 0, 1)
}

// SyncNationalHolidays pulls the public feed for year and upserts every
// nationally observed entry. Only a failed fetch aborts the run; per entry
// failures are collected in the result.
func (s *Service) SyncNationalHolidays(ctx context.Context, year int) (SyncResult, error) {
	res := SyncResult{Country: s.country, Year: year, Errors: []string{}}

	items, err := s.feed.PublicHolidays(ctx, year, s.country)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		s.logger.Error().Err(err).Int("year", year).Msg("holiday sync aborted")
		return res, fmt.Errorf("sync national holidays: %w", err)
	}

	for _, item := range items {
		if !item.Global {
			res.Skipped++
			continue
		}

		date, err := time.Parse(time.DateOnly, item.Date)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: invalid date %q", item.Name, item.Date))
			continue
		}

		h := &Holiday{
			Name:        item.Name,
			LocalName:   item.LocalName,
			Date:        date,
			Country:     s.country,
			IsRecurring: item.Fixed,
			IsActive:    true,
			Source:      SourceAPI,
		}
		if item.Fixed {
			month, day := int(date.Month()), date.Day()
			h.RecurringMonth = &month
			h.RecurringDay = &day
		}

		outcome, err := s.store.UpsertHoliday(ctx, h)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s (%s): %v", item.Name, item.Date, err))
			continue
		}
		switch outcome {
		case Created:
			res.Created++
		case Updated:
			res.Updated++
		}
	}

	s.metrics.ObserveHolidaySync(res.Created, res.Updated, res.Skipped, res.Failed)
	s.logger.Info().
		Int("year", year).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("holiday sync complete")

	return res, nil
}

// GenerateRecurringHolidays materialises every recurring holiday for year
// and returns how many rows were created.
func (s *Service) GenerateRecurringHolidays(ctx context.Context, year int) (int, error) {
	recurring, err := s.store.FindRecurringHolidays(ctx, s.country)
	if err != nil {
		return 0, fmt.Errorf("load recurring holidays: %w", err)
	}

	created := 0
	seen := make(map[string]bool, len(recurring))
	for _, h := range recurring {
		if h.RecurringMonth == nil || h.RecurringDay == nil || seen[h.Name] {
			continue
		}
		seen[h.Name] = true

		month := time.Month(*h.RecurringMonth)
		date := time.Date(year, month, *h.RecurringDay, 0, 0, 0, 0, time.UTC)
		if date.Month() != month {
			// Feb 29 outside leap years.
			s.logger.Debug().Str("holiday", h.Name).Int("year", year).Msg("recurring date does not exist this year")
			continue
		}

		exists, err := s.store.ExistsInYear(ctx, h.Name, s.country, year)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		instance := &Holiday{
			Name:           h.Name,
			LocalName:      h.LocalName,
			Date:           date,
			Country:        s.country,
			IsRecurring:    true,
			RecurringDay:   h.RecurringDay,
			RecurringMonth: h.RecurringMonth,
			AllowWork:      h.AllowWork,
			IsActive:       true,
			Source:         SourceGenerated,
		}
		ok, err := s.store.CreateHoliday(ctx, instance)
		if err != nil {
			return created, fmt.Errorf("create %s %d: %w", h.Name, year, err)
		}
		if ok {
			created++
		}
	}

	s.logger.Info().Int("year", year).Int("created", created).Msg("recurring holidays generated")
	return created, nil
}
