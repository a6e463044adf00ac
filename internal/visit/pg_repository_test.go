package visit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
)

var (
	patientCols = []string{"id", "name", "frequency_id", "last_visit_date", "next_scheduled_visit_date", "created_at", "updated_at"}

	frequencyCols = []string{
		"id", "name", "description", "frequency_type", "next_date_calculation_rule",
		"days_between_visits", "visits_per_month", "interval_value", "interval_unit", "visits_per_day",
		"weekly_pattern", "custom_schedule", "respect_business_hours", "allow_weekends", "allow_holidays",
		"is_active", "created_at", "updated_at",
	}
)

func strp(s string) *string { return &s }

func TestPgRepositoryGetPatientByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, freqID := uuid.New(), uuid.New()
	last := at("2026-05-04 11:00")
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM patients p").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(patientCols).AddRow(id, "Ana Rojas", &freqID, &last, (*time.Time)(nil), now, now))

	p, err := NewPgRepository(mock).GetPatientByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Ana Rojas", p.Name)
	require.NotNil(t, p.FrequencyID)
	assert.Equal(t, freqID, *p.FrequencyID)
	require.NotNil(t, p.LastVisitDate)
	assert.Equal(t, last, *p.LastVisitDate)
	assert.Nil(t, p.NextScheduledVisitDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryGetPatientByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT .* FROM patients p").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = NewPgRepository(mock).GetPatientByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPgRepositoryGetFrequencyByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM frequencies").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(frequencyCols).AddRow(
			id, "Physio", strp("Three sessions a week"), frequency.TypeWeeklyPattern, frequency.RuleNextBusinessDay,
			(*int)(nil), (*int)(nil), (*int)(nil), (*string)(nil), (*int)(nil),
			[]int16{1, 3, 5}, []byte(`{"schedule_type":"SPECIFIC_TIMES","fixed_times":["09:00","15:30"]}`), true, false, false,
			true, now, now,
		))

	f, err := NewPgRepository(mock).GetFrequencyByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Three sessions a week", f.Description)
	assert.Equal(t, frequency.TypeWeeklyPattern, f.Type)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, f.WeeklyPattern)
	assert.Equal(t, frequency.SpecificTimes{Times: []frequency.Clock{{Hour: 9}, {Hour: 15, Minute: 30}}}, f.Custom)
	assert.Empty(t, f.IntervalUnit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryGetFrequencyByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT .* FROM frequencies").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = NewPgRepository(mock).GetFrequencyByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrFrequencyNotFound)
}

func TestPgRepositoryUpdateNextScheduledVisit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	next := at("2026-05-22 09:00")
	mock.ExpectExec("UPDATE patients").WithArgs(id, next).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE patients").WithArgs(id, next).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPgRepository(mock)
	require.NoError(t, repo.UpdateNextScheduledVisit(context.Background(), id, next))
	assert.ErrorIs(t, repo.UpdateNextScheduledVisit(context.Background(), id, next), ErrPatientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryCreateFrequency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	f := &frequency.Frequency{
		Name:          "Insulin",
		Type:          frequency.TypeHourly,
		IntervalValue: intp(12),
		IntervalUnit:  frequency.UnitHours,
		Custom:        frequency.FixedHours{Times: []frequency.Clock{{Hour: 8}, {Hour: 20}}},
		IsActive:      true,
	}

	mock.ExpectExec("INSERT INTO frequencies").
		WithArgs(pgxmock.AnyArg(), "Insulin", (*string)(nil), "HOURLY", "EXACT_DAYS",
			(*int)(nil), (*int)(nil), intp(12), strp("HOURS"), (*int)(nil),
			[]int16(nil), []byte(`{"schedule_type":"FIXED_HOURS","fixed_times":["08:00","20:00"]}`),
			false, false, false, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPgRepository(mock).CreateFrequency(context.Background(), f))
	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryInsertEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	patientID := uuid.New()
	payload := []byte(`{"persisted":true}`)
	mock.ExpectExec("INSERT INTO event_logs").
		WithArgs(EventNextVisitCalculated, &patientID, payload, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewPgRepository(mock).InsertEvent(context.Background(), EventLog{
		EventType: EventNextVisitCalculated,
		PatientID: &patientID,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
