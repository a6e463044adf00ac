package holiday_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday/holidaytest"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeFeed struct {
	items []holiday.PublicHoliday
	err   error
	calls int
}

func (f *fakeFeed) PublicHolidays(_ context.Context, _ int, _ string) ([]holiday.PublicHoliday, error) {
	f.calls++
	return f.items, f.err
}

func newService(store holiday.Store, feed holiday.Feed) *holiday.Service {
	return holiday.NewService(store, feed, "CL", nil, zerolog.Nop())
}

func TestIsWorkingDay(t *testing.T) {
	laborDay := holidaytest.Holiday("Labour Day", "2026-05-01", "CL")
	navyDay := holidaytest.Holiday("Navy Day", "2026-05-21", "CL")
	navyDay.AllowWork = true
	otherCountry := holidaytest.Holiday("Other", "2026-05-22", "AR")

	store := holidaytest.NewStore(laborDay, navyDay, otherCountry)
	svc := newService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		date        string
		settings    holiday.Settings
		wantWorking bool
		wantReason  string
		wantHoliday bool
	}{
		{name: "plain weekday", date: "2026-05-07", wantWorking: true},
		{name: "saturday", date: "2026-05-02", wantReason: holiday.ReasonWeekend},
		{name: "saturday with weekends allowed", date: "2026-05-02", settings: holiday.Settings{AllowWeekends: true}, wantWorking: true},
		{name: "holiday without override", date: "2026-05-01", wantReason: "Labour Day", wantHoliday: true},
		{name: "global allow work", date: "2026-05-01", settings: holiday.Settings{AllowWorkOnHolidays: true}, wantWorking: true, wantHoliday: true},
		{name: "holiday allows work", date: "2026-05-21", wantWorking: true, wantHoliday: true},
		{name: "custom working holiday", date: "2026-05-01", settings: holiday.Settings{CustomWorkingHolidays: []string{"2026-05-01"}}, wantWorking: true, wantHoliday: true},
		{name: "other country holiday ignored", date: "2026-05-22", wantWorking: true},
		{
			name:       "custom non-working without holiday",
			date:       "2026-05-07",
			settings:   holiday.Settings{CustomNonWorkingDays: []string{"2026-05-07"}},
			wantReason: holiday.ReasonCustomNonWorking,
		},
		{
			name: "custom non-working beats every override",
			date: "2026-05-21",
			settings: holiday.Settings{
				AllowWorkOnHolidays:   true,
				CustomWorkingHolidays: []string{"2026-05-21"},
				CustomNonWorkingDays:  []string{"2026-05-21"},
			},
			wantReason:  "Navy Day",
			wantHoliday: true,
		},
		{
			name: "holiday in both custom lists",
			date: "2026-05-01",
			settings: holiday.Settings{
				CustomWorkingHolidays: []string{"2026-05-01"},
				CustomNonWorkingDays:  []string{"2026-05-01"},
			},
			wantReason:  "Labour Day",
			wantHoliday: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := svc.IsWorkingDay(ctx, day(tt.date).Add(15*time.Hour), tt.settings)

			assert.Equal(t, tt.wantWorking, check.IsWorkingDay)
			assert.Equal(t, tt.wantReason, check.Reason)
			assert.Equal(t, day(tt.date), check.Date)
			if tt.wantHoliday {
				require.NotNil(t, check.Holiday)
			} else {
				assert.Nil(t, check.Holiday)
			}
		})
	}
}

func TestIsWorkingDayFailsOpenOnStoreError(t *testing.T) {
	store := holidaytest.NewStore()
	store.FindErr = errors.New("connection refused")
	svc := newService(store, nil)

	check := svc.IsWorkingDay(context.Background(), day("2026-05-07"), holiday.Settings{})
	assert.True(t, check.IsWorkingDay)

	check = svc.IsWorkingDay(context.Background(), day("2026-05-07"), holiday.Settings{CustomNonWorkingDays: []string{"2026-05-07"}})
	assert.False(t, check.IsWorkingDay)
	assert.Equal(t, holiday.ReasonCustomNonWorking, check.Reason)
}

func TestIsWorkingDaySkipsLookupOnWeekends(t *testing.T) {
	store := holidaytest.NewStore()
	svc := newService(store, nil)

	svc.IsWorkingDay(context.Background(), day("2026-05-02"), holiday.Settings{})
	assert.Zero(t, store.Lookups)
}

func TestNextWorkingDay(t *testing.T) {
	store := holidaytest.NewStore(holidaytest.Holiday("Labour Day", "2026-05-01", "CL"))
	svc := newService(store, nil)
	ctx := context.Background()

	t.Run("skips holiday and weekend", func(t *testing.T) {
		got := svc.NextWorkingDay(ctx, day("2026-04-30").Add(10*time.Hour), holiday.Settings{})
		assert.Equal(t, day("2026-05-04"), got)
	})

	t.Run("is strictly after a working day", func(t *testing.T) {
		got := svc.NextWorkingDay(ctx, day("2026-05-04"), holiday.Settings{})
		assert.Equal(t, day("2026-05-05"), got)
	})

	t.Run("weekends allowed", func(t *testing.T) {
		got := svc.NextWorkingDay(ctx, day("2026-05-01"), holiday.Settings{AllowWeekends: true})
		assert.Equal(t, day("2026-05-02"), got)
	})
}

func TestNextWorkingDayFallsBackAfterLookahead(t *testing.T) {
	var closed []string
	for d := day("2026-06-01"); d.Before(day("2026-06-30")); d = d.AddDate(0, 0, 1) {
		closed = append(closed, holiday.DateKey(d))
	}
	store := holidaytest.NewStore()
	svc := newService(store, nil)

	got := svc.NextWorkingDay(context.Background(), day("2026-06-01"), holiday.Settings{
		AllowWeekends:        true,
		CustomNonWorkingDays: closed,
	})
	assert.Equal(t, day("2026-06-02"), got)
	assert.Equal(t, holiday.MaxLookahead, store.Lookups)
}

func TestSyncNationalHolidays(t *testing.T) {
	existing := holidaytest.Holiday("Año Nuevo", "2026-01-01", "CL")
	store := holidaytest.NewStore(existing)
	store.UpsertErr["Broken"] = errors.New("constraint violation")

	feed := &fakeFeed{items: []holiday.PublicHoliday{
		{Date: "2026-01-01", LocalName: "Año Nuevo", Name: "New Year's Day", CountryCode: "CL", Fixed: true, Global: true},
		{Date: "2026-05-01", LocalName: "Día del Trabajo", Name: "Labour Day", CountryCode: "CL", Fixed: true, Global: true},
		{Date: "2026-06-07", LocalName: "Asalto y Toma del Morro de Arica", Name: "Battle of Arica", CountryCode: "CL", Global: false},
		{Date: "2026-13-40", Name: "Garbage", Global: true},
		{Date: "2026-09-18", Name: "Broken", Global: true},
	}}
	svc := newService(store, feed)

	res, err := svc.SyncNationalHolidays(context.Background(), 2026)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)

	h, err := store.FindHoliday(context.Background(), day("2026-05-01"), "CL")
	require.NoError(t, err)
	assert.True(t, h.IsRecurring)
	require.NotNil(t, h.RecurringMonth)
	assert.Equal(t, 5, *h.RecurringMonth)
	assert.Equal(t, holiday.SourceAPI, h.Source)
}

func TestSyncNationalHolidaysAbortsOnFeedFailure(t *testing.T) {
	store := holidaytest.NewStore()
	svc := newService(store, &fakeFeed{err: errors.New("holiday feed returned 503")})

	res, err := svc.SyncNationalHolidays(context.Background(), 2026)
	require.Error(t, err)
	assert.Len(t, res.Errors, 1)
	assert.Zero(t, res.Created+res.Updated+res.Skipped)
	assert.Empty(t, store.All())
}

func TestGenerateRecurringHolidays(t *testing.T) {
	store := holidaytest.NewStore(
		holidaytest.Recurring("Independence Day", "2026-09-18", "CL"),
		holidaytest.Recurring("Leap Festival", "2024-02-29", "CL"),
		holidaytest.Recurring("Christmas", "2026-12-25", "CL"),
		holidaytest.Holiday("Christmas", "2027-12-25", "CL"),
		holidaytest.Recurring("Foreign Day", "2026-07-09", "AR"),
	)
	svc := newService(store, nil)

	created, err := svc.GenerateRecurringHolidays(context.Background(), 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	h, err := store.FindHoliday(context.Background(), day("2027-09-18"), "CL")
	require.NoError(t, err)
	assert.Equal(t, holiday.SourceGenerated, h.Source)

	again, err := svc.GenerateRecurringHolidays(context.Background(), 2027)
	require.NoError(t, err)
	assert.Zero(t, again)
}
