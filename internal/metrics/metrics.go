package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulingMetrics exposes counters/histograms for the visit calculator,
// the holiday calendar and the HTTP surface.
type SchedulingMetrics struct {
	calculations    *prometheus.CounterVec
	adjustments     *prometheus.CounterVec
	calendarFailure prometheus.Counter
	holidaySync     *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "scheduling",
			Name:      "next_visit_calculations_total",
			Help:      "Next visit calculations by frequency type, rule and outcome",
		}, []string{"frequency_type", "rule", "status"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "scheduling",
			Name:      "date_adjustments_total",
			Help:      "Candidate dates moved by a calculation rule",
		}, []string{"rule", "holiday"}),
		calendarFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "calendar",
			Name:      "lookup_failures_total",
			Help:      "Holiday lookups that failed and were treated as working days",
		}),
		holidaySync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "calendar",
			Name:      "holiday_sync_items_total",
			Help:      "National holiday feed entries by sync outcome",
		}, []string{"outcome"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homecare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.calculations, m.adjustments, m.calendarFailure, m.holidaySync, m.httpLatency)
	return m
}

func (m *SchedulingMetrics) ObserveCalculation(frequencyType, rule string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.calculations.WithLabelValues(frequencyType, rule, status).Inc()
}

func (m *SchedulingMetrics) ObserveAdjustment(rule string, holiday bool) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(rule, strconv.FormatBool(holiday)).Inc()
}

func (m *SchedulingMetrics) ObserveCalendarFailure() {
	if m == nil {
		return
	}
	m.calendarFailure.Inc()
}

func (m *SchedulingMetrics) ObserveHolidaySync(created, updated, skipped, errored int) {
	if m == nil {
		return
	}
	m.holidaySync.WithLabelValues("created").Add(float64(created))
	m.holidaySync.WithLabelValues("updated").Add(float64(updated))
	m.holidaySync.WithLabelValues("skipped").Add(float64(skipped))
	m.holidaySync.WithLabelValues("errored").Add(float64(errored))
}

func (m *SchedulingMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
