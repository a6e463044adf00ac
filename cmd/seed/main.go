package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/config"
	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/logging"
	"github.com/hackgods/homecare-visit-scheduling/internal/visit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Env).With().Str("service", "seed").Logger()
	logger.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	// zero picks a random seed
	gofakeit.Seed(0)

	repo := visit.NewPgRepository(pool)
	freqs, err := seedFrequencies(context.Background(), repo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed frequencies")
	}
	if err := seedPatients(context.Background(), repo, freqs, 2000, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedHolidays(context.Background(), holiday.NewPgStore(pool), cfg.Holidays.Country, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed holidays")
	}

	logger.Info().Msg("seed complete")
}

func intp(n int) *int { return &n }

func clocks(s ...string) []frequency.Clock {
	out := make([]frequency.Clock, 0, len(s))
	for _, v := range s {
		out = append(out, frequency.MustParseClock(v))
	}
	return out
}

// catalogue covers every frequency type and calculation rule at least once.
func catalogue() []*frequency.Frequency {
	return []*frequency.Frequency{
		{Name: "Weekly check-in", Type: frequency.TypeSimple, Rule: frequency.RuleExactDays, DaysBetweenVisits: intp(7)},
		{Name: "Fortnightly nursing", Type: frequency.TypeSimple, Rule: frequency.RuleNextBusinessDay, DaysBetweenVisits: intp(14)},
		{Name: "Monthly review", Type: frequency.TypeSimple, Rule: frequency.RuleSameDayNextMonth, IntervalValue: intp(1), IntervalUnit: frequency.UnitMonths},
		{Name: "Twice a month", Type: frequency.TypeSimple, Rule: frequency.RuleSmartFrequency, VisitsPerMonth: intp(2)},
		{
			Name: "Medication rounds", Type: frequency.TypeHourly, Rule: frequency.RuleHourlyPattern,
			IntervalValue: intp(8), IntervalUnit: frequency.UnitHours,
			Custom: frequency.FixedHours{Times: clocks("08:00", "16:00", "23:00")}, AllowWeekends: true, AllowHolidays: true,
		},
		{Name: "Wound care", Type: frequency.TypeDailyMultiple, Rule: frequency.RuleDailyMultiple, VisitsPerDay: intp(3), AllowWeekends: true},
		{Name: "Physio Mon/Wed/Fri", Type: frequency.TypeWeeklyPattern, Rule: frequency.RuleWeeklyPattern, WeeklyPattern: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{
			Name: "Insulin schedule", Type: frequency.TypeCustom, Rule: frequency.RuleCustomSchedule,
			Custom: frequency.SpecificTimes{Times: clocks("07:30", "12:30", "19:30")}, AllowWeekends: true,
		},
		{
			Name: "Palliative monitoring", Type: frequency.TypeCustom, Rule: frequency.RuleCustomSchedule,
			Custom: frequency.FlexibleIntervals{Start: frequency.MustParseClock("08:00"), IntervalHours: 6}, AllowWeekends: true, AllowHolidays: true,
		},
	}
}

func seedFrequencies(ctx context.Context, repo *visit.PgRepository, logger zerolog.Logger) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, f := range catalogue() {
		f.IsActive = true
		f.RespectBusinessHours = true
		f.Description = fmt.Sprintf("Care plan reviewed by %s", gofakeit.Name())

		if res := frequency.Validate(f); !res.IsValid {
			return nil, fmt.Errorf("frequency %q is invalid: %v", f.Name, res.Errors)
		}
		if err := repo.CreateFrequency(ctx, f); err != nil {
			return nil, err
		}
		ids = append(ids, f.ID)
	}
	logger.Info().Int("count", len(ids)).Msg("frequencies seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, repo *visit.PgRepository, freqs []uuid.UUID, count int, logger zerolog.Logger) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		p := &visit.Patient{Name: gofakeit.Name()}
		// roughly one in ten patients has no care plan yet
		if gofakeit.Number(0, 9) > 0 {
			id := freqs[gofakeit.Number(0, len(freqs)-1)]
			p.FrequencyID = &id
		}
		if err := repo.CreatePatient(ctx, p); err != nil {
			return err
		}

		visits := gofakeit.Number(0, 4)
		for v := 0; v < visits; v++ {
			completed := gofakeit.DateRange(now.AddDate(0, -3, 0), now).UTC()
			if err := repo.CreateVisit(ctx, &visit.Visit{
				PatientID:   p.ID,
				Status:      visit.StatusCompleted,
				ScheduledAt: completed.Add(-time.Duration(gofakeit.Number(0, 90)) * time.Minute),
				CompletedAt: &completed,
			}); err != nil {
				return err
			}
		}

		if (i+1)%500 == 0 {
			logger.Info().Int("done", i+1).Int("total", count).Msg("patients seeded")
		}
	}
	return nil
}

// seedHolidays adds a few company holidays on top of whatever the feed
// sync brings in.
func seedHolidays(ctx context.Context, store *holiday.PgStore, country string, logger zerolog.Logger) error {
	year := time.Now().Year()
	manual := []holiday.Holiday{
		{Name: "Company Anniversary", Date: time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC), AllowWork: true},
		{Name: "Staff Training Day", Date: time.Date(year, time.October, 2, 0, 0, 0, 0, time.UTC)},
	}

	created := 0
	for i := range manual {
		h := manual[i]
		h.Country = country
		h.IsActive = true
		h.Source = holiday.SourceManual
		ok, err := store.CreateHoliday(ctx, &h)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	logger.Info().Int("created", created).Msg("manual holidays seeded")
	return nil
}
