package holiday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/homecare-visit-scheduling/internal/db"
)

const holidayColumns = `id, name, local_name, date, country, is_recurring, recurring_day, recurring_month,
		       allow_work, is_active, source, created_at, updated_at`

type PgStore struct {
	db db.Querier
}

func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

func scanHoliday(row pgx.Row) (*Holiday, error) {
	var h Holiday
	var localName *string

	err := row.Scan(
		&h.ID,
		&h.Name,
		&localName,
		&h.Date,
		&h.Country,
		&h.IsRecurring,
		&h.RecurringDay,
		&h.RecurringMonth,
		&h.AllowWork,
		&h.IsActive,
		&h.Source,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHolidayNotFound
		}
		return nil, err
	}

	if localName != nil {
		h.LocalName = *localName
	}
	return &h, nil
}

func (s *PgStore) FindHoliday(ctx context.Context, date time.Time, country string) (*Holiday, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+holidayColumns+`
		FROM holidays
		WHERE date = $1::date
		  AND country = $2
		  AND is_active
	`, DateKey(date), country)
	return scanHoliday(row)
}

func (s *PgStore) FindRecurringHolidays(ctx context.Context, country string) ([]Holiday, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+holidayColumns+`
		FROM holidays
		WHERE country = $1
		  AND is_recurring
		  AND is_active
		ORDER BY recurring_month, recurring_day, date DESC
	`, country)
	if err != nil {
		return nil, fmt.Errorf("query recurring holidays: %w", err)
	}
	defer rows.Close()

	var result []Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) UpsertHoliday(ctx context.Context, h *Holiday) (UpsertOutcome, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	var inserted bool
	err := s.db.QueryRow(ctx, `
		INSERT INTO holidays (id, name, local_name, date, country, is_recurring, recurring_day, recurring_month,
		                      allow_work, is_active, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (date, country) DO UPDATE
		SET name            = EXCLUDED.name,
		    local_name      = EXCLUDED.local_name,
		    is_recurring    = EXCLUDED.is_recurring,
		    recurring_day   = EXCLUDED.recurring_day,
		    recurring_month = EXCLUDED.recurring_month,
		    source          = EXCLUDED.source,
		    updated_at      = now()
		RETURNING (xmax = 0) AS inserted
	`, h.ID, h.Name, nullableString(h.LocalName), DateKey(h.Date), h.Country, h.IsRecurring,
		h.RecurringDay, h.RecurringMonth, h.AllowWork, h.IsActive, h.Source).Scan(&inserted)
	if err != nil {
		return 0, fmt.Errorf("upsert holiday: %w", err)
	}

	if inserted {
		return Created, nil
	}
	return Updated, nil
}

func (s *PgStore) CreateHoliday(ctx context.Context, h *Holiday) (bool, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO holidays (id, name, local_name, date, country, is_recurring, recurring_day, recurring_month,
		                      allow_work, is_active, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (date, country) DO NOTHING
	`, h.ID, h.Name, nullableString(h.LocalName), DateKey(h.Date), h.Country, h.IsRecurring,
		h.RecurringDay, h.RecurringMonth, h.AllowWork, h.IsActive, h.Source)
	if err != nil {
		return false, fmt.Errorf("insert holiday: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) ExistsInYear(ctx context.Context, name, country string, year int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM holidays
			WHERE name = $1
			  AND country = $2
			  AND EXTRACT(YEAR FROM date) = $3
		)
	`, name, country, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check holiday exists: %w", err)
	}
	return exists, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
