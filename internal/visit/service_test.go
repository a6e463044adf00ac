package visit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday/holidaytest"
)

type fakeRepo struct {
	patients    map[uuid.UUID]*Patient
	frequencies map[uuid.UUID]*frequency.Frequency
	events      []EventLog
	updated     map[uuid.UUID]time.Time

	patientErr error
	updateErr  error
	eventErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients:    map[uuid.UUID]*Patient{},
		frequencies: map[uuid.UUID]*frequency.Frequency{},
		updated:     map[uuid.UUID]time.Time{},
	}
}

func (r *fakeRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	if r.patientErr != nil {
		return nil, r.patientErr
	}
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetFrequencyByID(_ context.Context, id uuid.UUID) (*frequency.Frequency, error) {
	f, ok := r.frequencies[id]
	if !ok {
		return nil, ErrFrequencyNotFound
	}
	return f, nil
}

func (r *fakeRepo) UpdateNextScheduledVisit(_ context.Context, patientID uuid.UUID, next time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated[patientID] = next
	return nil
}

func (r *fakeRepo) CreateFrequency(_ context.Context, f *frequency.Frequency) error {
	r.frequencies[f.ID] = f
	return nil
}

func (r *fakeRepo) CreatePatient(_ context.Context, p *Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakeRepo) CreateVisit(context.Context, *Visit) error { return nil }

func (r *fakeRepo) InsertEvent(_ context.Context, ev EventLog) error {
	if r.eventErr != nil {
		return r.eventErr
	}
	r.events = append(r.events, ev)
	return nil
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func intp(n int) *int { return &n }

type fixture struct {
	repo    *fakeRepo
	svc     *Service
	patient *Patient
	freq    *frequency.Frequency
}

func newFixture(t *testing.T, store *holidaytest.Store, settings holiday.Settings) fixture {
	t.Helper()

	freq := &frequency.Frequency{
		ID:                uuid.New(),
		Name:              "Biweekly nursing",
		Type:              frequency.TypeSimple,
		Rule:              frequency.RuleSmartFrequency,
		DaysBetweenVisits: intp(14),
		IsActive:          true,
	}
	patient := &Patient{ID: uuid.New(), Name: "Ana Rojas", FrequencyID: &freq.ID}

	repo := newFakeRepo()
	repo.frequencies[freq.ID] = freq
	repo.patients[patient.ID] = patient

	holidays := holiday.NewService(store, nil, "CL", nil, zerolog.Nop())
	calc := frequency.NewCalculator(holidays, nil, zerolog.Nop())
	svc := NewService(repo, calc, settings, zerolog.Nop())
	svc.now = func() time.Time { return at("2026-05-07 09:00") }

	return fixture{repo: repo, svc: svc, patient: patient, freq: freq}
}

func TestCalculateNextVisitBaseDate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to now", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		res, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		require.NoError(t, err)

		assert.Equal(t, BaseFromNow, res.BaseDateSource)
		assert.Equal(t, at("2026-05-21 09:00"), res.Calculation.NextVisitDate)
		assert.False(t, res.Persisted)
		assert.Empty(t, fx.repo.updated)
	})

	t.Run("uses the last completed visit", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		last := at("2026-05-04 11:00")
		fx.patient.LastVisitDate = &last

		res, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		require.NoError(t, err)

		assert.Equal(t, BaseFromLastVisit, res.BaseDateSource)
		assert.Equal(t, at("2026-05-18 11:00"), res.Calculation.NextVisitDate)
	})

	t.Run("request base date wins", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		last := at("2026-05-04 11:00")
		fx.patient.LastVisitDate = &last
		base := at("2026-06-01 08:00")

		res, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{BaseDate: &base})
		require.NoError(t, err)

		assert.Equal(t, BaseFromRequest, res.BaseDateSource)
		assert.Equal(t, at("2026-06-15 08:00"), res.Calculation.NextVisitDate)
	})
}

func TestCalculateNextVisitHolidayAndPersist(t *testing.T) {
	store := holidaytest.NewStore(holidaytest.Holiday("Navy Day", "2026-05-21", "CL"))
	fx := newFixture(t, store, holiday.Settings{})

	res, err := fx.svc.CalculateNextVisit(context.Background(), fx.patient.ID, NextVisitRequest{Persist: true})
	require.NoError(t, err)

	assert.Equal(t, at("2026-05-22 09:00"), res.Calculation.NextVisitDate)
	assert.Equal(t, 1, res.Calculation.Metadata.AdjustmentDays)
	assert.True(t, res.Calculation.BusinessDayAdjustment)
	assert.True(t, res.Persisted)
	assert.Equal(t, at("2026-05-22 09:00"), fx.repo.updated[fx.patient.ID])

	require.Len(t, fx.repo.events, 1)
	ev := fx.repo.events[0]
	assert.Equal(t, EventNextVisitCalculated, ev.EventType)
	require.NotNil(t, ev.PatientID)
	assert.Equal(t, fx.patient.ID, *ev.PatientID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, true, payload["persisted"])
	assert.Equal(t, "SMART_FREQUENCY", payload["rule"])
}

func TestCalculateNextVisitCompanySettings(t *testing.T) {
	store := holidaytest.NewStore(holidaytest.Holiday("Navy Day", "2026-05-21", "CL"))
	fx := newFixture(t, store, holiday.Settings{CustomWorkingHolidays: []string{"2026-05-21"}})

	res, err := fx.svc.CalculateNextVisit(context.Background(), fx.patient.ID, NextVisitRequest{})
	require.NoError(t, err)

	assert.Equal(t, at("2026-05-21 09:00"), res.Calculation.NextVisitDate)
	assert.Equal(t, []string{"2026-05-21"}, res.Calculation.Metadata.Options.Settings.CustomWorkingHolidays)
}

func TestCalculateNextVisitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown patient", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		_, err := fx.svc.CalculateNextVisit(ctx, uuid.New(), NextVisitRequest{})
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("patient store failure", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.repo.patientErr = errors.New("connection reset")
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("no frequency assigned", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.patient.FrequencyID = nil
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		assert.ErrorIs(t, err, ErrPatientHasNoFrequency)
	})

	t.Run("missing frequency", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		other := uuid.New()
		fx.patient.FrequencyID = &other
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		assert.ErrorIs(t, err, ErrFrequencyNotFound)
	})

	t.Run("inactive frequency", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.freq.IsActive = false
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		assert.ErrorIs(t, err, ErrFrequencyInactive)
	})

	t.Run("misconfigured frequency", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.freq.Type = "MONTHLY"
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{Persist: true})
		assert.ErrorIs(t, err, frequency.ErrUnsupportedFrequencyType)
		assert.True(t, frequency.IsConfigurationError(err))
		assert.Empty(t, fx.repo.updated)
		assert.Empty(t, fx.repo.events)
	})

	t.Run("persist failure", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.repo.updateErr = errors.New("deadlock detected")
		_, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{Persist: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist next visit")
	})

	t.Run("event log failure is not fatal", func(t *testing.T) {
		fx := newFixture(t, holidaytest.NewStore(), holiday.Settings{})
		fx.repo.eventErr = errors.New("event_logs unavailable")
		res, err := fx.svc.CalculateNextVisit(ctx, fx.patient.ID, NextVisitRequest{})
		require.NoError(t, err)
		assert.NotNil(t, res.Calculation)
	})
}
