package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/metrics"
	"github.com/hackgods/homecare-visit-scheduling/internal/visit"
)

type NextVisitService interface {
	CalculateNextVisit(ctx context.Context, patientID uuid.UUID, req visit.NextVisitRequest) (*visit.NextVisitResult, error)
}

type FrequencyCalculator interface {
	Schedule(ctx context.Context, f *frequency.Frequency, start, end time.Time, opts frequency.Options) ([]time.Time, error)
	IsValidVisitDate(ctx context.Context, f *frequency.Frequency, proposed time.Time, lastVisit *time.Time, opts frequency.Options) frequency.VisitDateCheck
}

type CalendarService interface {
	IsWorkingDay(ctx context.Context, date time.Time, settings holiday.Settings) holiday.WorkingDayCheck
	NextWorkingDay(ctx context.Context, from time.Time, settings holiday.Settings) time.Time
	SyncNationalHolidays(ctx context.Context, year int) (holiday.SyncResult, error)
	GenerateRecurringHolidays(ctx context.Context, year int) (int, error)
}

type RouterConfig struct {
	Visits     NextVisitService
	Calculator FrequencyCalculator
	Calendar   CalendarService

	// Settings are the company holiday overrides used by calendar queries
	// and merged into frequency tooling requests.
	Settings        holiday.Settings
	ScheduleTimeout time.Duration

	Postgres PingFunc
	Redis    PingFunc

	Metrics  *metrics.SchedulingMetrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger, cfg.Metrics))
	r.Use(RecoverMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	h := &handlers{
		visits:          cfg.Visits,
		calc:            cfg.Calculator,
		calendar:        cfg.Calendar,
		settings:        cfg.Settings,
		scheduleTimeout: cfg.ScheduleTimeout,
		logger:          cfg.Logger,
	}

	r.Post("/patients/{id}/next-visit", h.nextVisit)

	r.Route("/frequencies", func(r chi.Router) {
		r.Post("/validate", h.validateFrequency)
		r.Post("/schedule", h.scheduleFrequency)
		r.Post("/check-date", h.checkVisitDate)
	})

	r.Route("/calendar", func(r chi.Router) {
		r.Get("/working-day", h.workingDay)
		r.Get("/next-working-day", h.nextWorkingDay)
	})

	r.Route("/holidays", func(r chi.Router) {
		r.Post("/sync", h.syncHolidays)
		r.Post("/recurring", h.generateRecurring)
	})

	return r
}
