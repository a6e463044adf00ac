package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/config"
	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/logging"
)

type SimConfig struct {
	APIBaseURL    string
	Duration      time.Duration
	Workers       int
	NextVisit     float64
	PersistRatio  float64
	CalendarRatio float64
	ScheduleRatio float64
	PatientLimit  int
	PostgresDSN   string
}

type DataPool struct {
	Patients []uuid.UUID
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record counts 409 and 422 answers as conflicts: the patient data is the
// problem, not the service.
func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status == http.StatusOK:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && (status == http.StatusConflict || status == http.StatusUnprocessableEntity):
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	NextVisit      OperationMetrics
	WorkingDay     OperationMetrics
	NextWorkingDay OperationMetrics
	Schedule       OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	logger  zerolog.Logger
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(baseCfg.LogLevel, baseCfg.Env).With().Str("service", "simulate").Logger()

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("next_visit", cfg.NextVisit).
		Float64("calendar", cfg.CalendarRatio).
		Float64("schedule", cfg.ScheduleRatio).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, 2)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("load data pool")
	}
	logger.Info().Int("patients", len(dataPool.Patients)).Msg("data pool loaded")

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		NextVisit:     getFloat("SIM_NEXT_VISIT_RATIO", 0.6),
		PersistRatio:  getFloat("SIM_PERSIST_RATIO", 0.1),
		CalendarRatio: getFloat("SIM_CALENDAR_RATIO", 0.3),
		ScheduleRatio: getFloat("SIM_SCHEDULE_RATIO", 0.1),
		PatientLimit:  getInt("SIM_PATIENT_LIMIT", 4000),
		PostgresDSN:   base.PostgresDSN,
	}

	// Normalize ratios
	total := cfg.NextVisit + cfg.CalendarRatio + cfg.ScheduleRatio
	if total > 0 {
		cfg.NextVisit /= total
		cfg.CalendarRatio /= total
		cfg.ScheduleRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	rows, err := pool.Query(ctx, `
		SELECT id FROM patients WHERE frequency_id IS NOT NULL LIMIT $1
	`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	dataPool := &DataPool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients with a frequency loaded, run the seed first")
	}
	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.NextVisit:
				s.doNextVisit(ctx, rng)
			case r < s.config.NextVisit+s.config.CalendarRatio:
				if rng.Intn(2) == 0 {
					s.doWorkingDay(ctx, rng)
				} else {
					s.doNextWorkingDay(ctx, rng)
				}
			default:
				s.doSchedule(ctx, rng)
			}
		}
	}
}

func randomDay(rng *rand.Rand) time.Time {
	return time.Now().UTC().AddDate(0, 0, rng.Intn(365))
}

func (s *Simulator) do(ctx context.Context, method, url string, body any, om *OperationMetrics) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if ctx.Err() != nil {
		// cut off by the end of the run, not a server failure
		return
	}

	status := 0
	if err == nil {
		status = resp.StatusCode
		resp.Body.Close()
	}
	om.Record(latency, status, err)
}

func (s *Simulator) doNextVisit(ctx context.Context, rng *rand.Rand) {
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	body := map[string]any{"persist": rng.Float64() < s.config.PersistRatio}
	s.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/patients/%s/next-visit", s.config.APIBaseURL, patientID), body, &s.metrics.NextVisit)
}

func (s *Simulator) doWorkingDay(ctx context.Context, rng *rand.Rand) {
	s.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/calendar/working-day?date=%s", s.config.APIBaseURL, randomDay(rng).Format(time.DateOnly)),
		nil, &s.metrics.WorkingDay)
}

func (s *Simulator) doNextWorkingDay(ctx context.Context, rng *rand.Rand) {
	s.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/calendar/next-working-day?from=%s", s.config.APIBaseURL, randomDay(rng).Format(time.DateOnly)),
		nil, &s.metrics.NextWorkingDay)
}

func (s *Simulator) doSchedule(ctx context.Context, rng *rand.Rand) {
	start := randomDay(rng)
	body := map[string]any{
		"frequency": map[string]any{
			"name":                       "Simulated plan",
			"frequency_type":             "WEEKLY_PATTERN",
			"next_date_calculation_rule": "WEEKLY_PATTERN",
			"weekly_pattern":             []int{1, 3, 5},
			"is_active":                  true,
		},
		"start": start,
		"end":   start.AddDate(0, 3, 0),
	}
	s.do(ctx, http.MethodPost, s.config.APIBaseURL+"/frequencies/schedule", body, &s.metrics.Schedule)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Next visit", &s.metrics.NextVisit)
	printOperationReport("Working day", &s.metrics.WorkingDay)
	printOperationReport("Next working day", &s.metrics.NextWorkingDay)
	printOperationReport("Schedule", &s.metrics.Schedule)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
