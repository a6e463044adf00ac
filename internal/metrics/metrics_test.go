package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSchedulingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulingMetrics(reg)

	m.ObserveCalculation("SIMPLE", "SMART_FREQUENCY", nil)
	m.ObserveCalculation("SIMPLE", "SMART_FREQUENCY", nil)
	m.ObserveCalculation("CUSTOM", "EXACT_DAYS", errors.New("boom"))
	m.ObserveAdjustment("NEXT_BUSINESS_DAY", true)
	m.ObserveCalendarFailure()
	m.ObserveHolidaySync(3, 1, 2, 0)
	m.ObserveHTTP("GET", "/calendar/working-day", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calculations.WithLabelValues("SIMPLE", "SMART_FREQUENCY", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("CUSTOM", "EXACT_DAYS", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adjustments.WithLabelValues("NEXT_BUSINESS_DAY", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calendarFailure))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.holidaySync.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.holidaySync.WithLabelValues("skipped")))
}

func TestSchedulingMetricsNilSafe(t *testing.T) {
	var m *SchedulingMetrics
	m.ObserveCalculation("SIMPLE", "EXACT_DAYS", nil)
	m.ObserveAdjustment("SMART_FREQUENCY", false)
	m.ObserveCalendarFailure()
	m.ObserveHolidaySync(1, 1, 1, 1)
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
}
