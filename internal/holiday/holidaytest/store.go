// Package holidaytest provides an in-memory holiday.Store for tests.
package holidaytest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
)

type Store struct {
	mu       sync.Mutex
	holidays []holiday.Holiday

	// FindErr, when set, is returned by every FindHoliday call.
	FindErr error
	// UpsertErr maps a holiday name to the error UpsertHoliday returns for it.
	UpsertErr map[string]error
	Lookups   int
}

func NewStore(hs ...holiday.Holiday) *Store {
	s := &Store{UpsertErr: map[string]error{}}
	for _, h := range hs {
		s.Add(h)
	}
	return s
}

func (s *Store) Add(h holiday.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	s.holidays = append(s.holidays, h)
}

func (s *Store) All() []holiday.Holiday {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]holiday.Holiday(nil), s.holidays...)
}

// Holiday builds an active, non-recurring holiday on date (YYYY-MM-DD).
func Holiday(name, date, country string) holiday.Holiday {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	return holiday.Holiday{Name: name, Date: d, Country: country, IsActive: true, Source: holiday.SourceManual}
}

// Recurring builds an active recurring holiday anchored on date.
func Recurring(name, date, country string) holiday.Holiday {
	h := Holiday(name, date, country)
	month, day := int(h.Date.Month()), h.Date.Day()
	h.IsRecurring = true
	h.RecurringMonth = &month
	h.RecurringDay = &day
	return h
}

func (s *Store) FindHoliday(_ context.Context, date time.Time, country string) (*holiday.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups++
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	key := holiday.DateKey(date)
	for i := range s.holidays {
		h := s.holidays[i]
		if h.IsActive && h.Country == country && holiday.DateKey(h.Date) == key {
			return &h, nil
		}
	}
	return nil, holiday.ErrHolidayNotFound
}

func (s *Store) FindRecurringHolidays(_ context.Context, country string) ([]holiday.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []holiday.Holiday
	for _, h := range s.holidays {
		if h.IsActive && h.IsRecurring && h.Country == country {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) UpsertHoliday(_ context.Context, h *holiday.Holiday) (holiday.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.UpsertErr[h.Name]; err != nil {
		return 0, err
	}
	key := holiday.DateKey(h.Date)
	for i := range s.holidays {
		if s.holidays[i].Country == h.Country && holiday.DateKey(s.holidays[i].Date) == key {
			s.holidays[i].Name = h.Name
			s.holidays[i].LocalName = h.LocalName
			s.holidays[i].IsRecurring = h.IsRecurring
			s.holidays[i].RecurringDay = h.RecurringDay
			s.holidays[i].RecurringMonth = h.RecurringMonth
			s.holidays[i].Source = h.Source
			return holiday.Updated, nil
		}
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	s.holidays = append(s.holidays, *h)
	return holiday.Created, nil
}

func (s *Store) CreateHoliday(_ context.Context, h *holiday.Holiday) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := holiday.DateKey(h.Date)
	for _, existing := range s.holidays {
		if existing.Country == h.Country && holiday.DateKey(existing.Date) == key {
			return false, nil
		}
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	s.holidays = append(s.holidays, *h)
	return true, nil
}

func (s *Store) ExistsInYear(_ context.Context, name, country string, year int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.holidays {
		if h.Name == name && h.Country == country && h.Date.Year() == year {
			return true, nil
		}
	}
	return false, nil
}
