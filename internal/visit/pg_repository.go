package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/homecare-visit-scheduling/internal/db"
	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
)

const frequencyColumns = `id, name, description, frequency_type, next_date_calculation_rule,
		       days_between_visits, visits_per_month, interval_value, interval_unit, visits_per_day,
		       weekly_pattern, custom_schedule, respect_business_hours, allow_weekends, allow_holidays,
		       is_active, created_at, updated_at`

type PgRepository struct {
	db db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{db: q}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.FrequencyID,
		&p.LastVisitDate,
		&p.NextScheduledVisitDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanFrequency(row pgx.Row) (*frequency.Frequency, error) {
	var f frequency.Frequency
	var description, unit *string
	var pattern []int16
	var custom []byte

	err := row.Scan(
		&f.ID,
		&f.Name,
		&description,
		&f.Type,
		&f.Rule,
		&f.DaysBetweenVisits,
		&f.VisitsPerMonth,
		&f.IntervalValue,
		&unit,
		&f.VisitsPerDay,
		&pattern,
		&custom,
		&f.RespectBusinessHours,
		&f.AllowWeekends,
		&f.AllowHolidays,
		&f.IsActive,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFrequencyNotFound
		}
		return nil, err
	}

	if description != nil {
		f.Description = *description
	}
	if unit != nil {
		f.IntervalUnit = frequency.IntervalUnit(*unit)
	}
	for _, d := range pattern {
		f.WeeklyPattern = append(f.WeeklyPattern, time.Weekday(d))
	}
	f.Custom, err = frequency.UnmarshalSchedule(custom)
	if err != nil {
		return nil, fmt.Errorf("frequency %s: %w", f.ID, err)
	}
	return &f, nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT p.id, p.name, p.frequency_id,
		       (SELECT max(v.completed_at)
		          FROM visits v
		         WHERE v.patient_id = p.id
		           AND v.status = 'COMPLETED') AS last_visit_date,
		       p.next_scheduled_visit_date, p.created_at, p.updated_at
		FROM patients p
		WHERE p.id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetFrequencyByID(ctx context.Context, id uuid.UUID) (*frequency.Frequency, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+frequencyColumns+`
		FROM frequencies
		WHERE id = $1
	`, id)
	return scanFrequency(row)
}

func (r *PgRepository) UpdateNextScheduledVisit(ctx context.Context, patientID uuid.UUID, next time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patients
		SET next_scheduled_visit_date = $2,
		    updated_at = now()
		WHERE id = $1
	`, patientID, next)
	if err != nil {
		return fmt.Errorf("update next scheduled visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *PgRepository) CreateFrequency(ctx context.Context, f *frequency.Frequency) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	var custom []byte
	if f.Custom != nil {
		raw, err := frequency.MarshalSchedule(f.Custom)
		if err != nil {
			return fmt.Errorf("encode custom schedule: %w", err)
		}
		custom = raw
	}

	var pattern []int16
	for _, d := range f.WeeklyPattern {
		pattern = append(pattern, int16(d))
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO frequencies (id, name, description, frequency_type, next_date_calculation_rule,
		                         days_between_visits, visits_per_month, interval_value, interval_unit, visits_per_day,
		                         weekly_pattern, custom_schedule, respect_business_hours, allow_weekends, allow_holidays,
		                         is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, f.ID, f.Name, nullableString(f.Description), string(f.Type), string(ruleOrDefault(f.Rule)),
		f.DaysBetweenVisits, f.VisitsPerMonth, f.IntervalValue, nullableString(string(f.IntervalUnit)), f.VisitsPerDay,
		pattern, custom, f.RespectBusinessHours, f.AllowWeekends, f.AllowHolidays,
		f.IsActive)
	if err != nil {
		return fmt.Errorf("insert frequency: %w", err)
	}
	return nil
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (id, name, frequency_id, next_scheduled_visit_date)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.Name, p.FrequencyID, p.NextScheduledVisitDate)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) CreateVisit(ctx context.Context, v *Visit) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO visits (id, patient_id, status, scheduled_at, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.PatientID, string(v.Status), v.ScheduledAt, v.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, patient_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.PatientID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func ruleOrDefault(r frequency.Rule) frequency.Rule {
	if r == "" {
		return frequency.RuleExactDays
	}
	return r
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
