package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	"github.com/hackgods/homecare-visit-scheduling/internal/visit"
)

type handlers struct {
	visits          NextVisitService
	calc            FrequencyCalculator
	calendar        CalendarService
	settings        holiday.Settings
	scheduleTimeout time.Duration
	logger          zerolog.Logger
}

type ValidateFrequencyResponse struct {
	Validation frequency.ValidationResult `json:"validation"`
	Stats      frequency.FrequencyStats   `json:"stats"`
}

type ScheduleRequest struct {
	Frequency frequency.Frequency `json:"frequency"`
	Start     time.Time           `json:"start"`
	End       time.Time           `json:"end"`
	Options   frequency.Options   `json:"options"`
}

type ScheduleResponse struct {
	Dates     []time.Time `json:"dates"`
	Count     int         `json:"count"`
	Truncated bool        `json:"truncated"`
}

type CheckDateRequest struct {
	Frequency     frequency.Frequency `json:"frequency"`
	ProposedDate  time.Time           `json:"proposed_date"`
	LastVisitDate *time.Time          `json:"last_visit_date,omitempty"`
	Options       frequency.Options   `json:"options"`
}

type NextWorkingDayResponse struct {
	From           string `json:"from"`
	NextWorkingDay string `json:"next_working_day"`
}

type RecurringResponse struct {
	Year    int `json:"year"`
	Created int `json:"created"`
}

func (h *handlers) nextVisit(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return
	}

	var req visit.NextVisitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	res, err := h.visits.CalculateNextVisit(r.Context(), patientID, req)
	if err != nil {
		h.handleCalculationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) validateFrequency(w http.ResponseWriter, r *http.Request) {
	var f frequency.Frequency
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ValidateFrequencyResponse{
		Validation: frequency.Validate(&f),
		Stats:      frequency.Stats(&f),
	})
}

func (h *handlers) scheduleFrequency(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}
	if req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		writeError(w, http.StatusBadRequest, "invalid_range", "start and end are required and end must not be before start")
		return
	}

	ctx := r.Context()
	if h.scheduleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.scheduleTimeout)
		defer cancel()
	}

	dates, err := h.calc.Schedule(ctx, &req.Frequency, req.Start, req.End, h.withSettings(req.Options))
	truncated := false
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			h.handleCalculationError(w, r, err)
			return
		}
		truncated = true
	}
	if dates == nil {
		dates = []time.Time{}
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{Dates: dates, Count: len(dates), Truncated: truncated})
}

func (h *handlers) checkVisitDate(w http.ResponseWriter, r *http.Request) {
	var req CheckDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}
	if req.ProposedDate.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_proposed_date", "proposed_date is required")
		return
	}

	check := h.calc.IsValidVisitDate(r.Context(), &req.Frequency, req.ProposedDate, req.LastVisitDate, h.withSettings(req.Options))
	writeJSON(w, http.StatusOK, check)
}

func (h *handlers) workingDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.calendar.IsWorkingDay(r.Context(), date, h.querySettings(r)))
}

func (h *handlers) nextWorkingDay(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	next := h.calendar.NextWorkingDay(r.Context(), from, h.querySettings(r))
	writeJSON(w, http.StatusOK, NextWorkingDayResponse{
		From:           holiday.DateKey(from),
		NextWorkingDay: holiday.DateKey(next),
	})
}

func (h *handlers) syncHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	res, err := h.calendar.SyncNationalHolidays(r.Context(), year)
	if err != nil {
		h.logger.Warn().Err(err).Int("year", year).Msg("holiday sync request failed")
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) generateRecurring(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	created, err := h.calendar.GenerateRecurringHolidays(r.Context(), year)
	if err != nil {
		h.logger.Error().Err(err).Int("year", year).Msg("recurring holiday generation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, RecurringResponse{Year: year, Created: created})
}

func (h *handlers) withSettings(opts frequency.Options) frequency.Options {
	opts.Settings = h.settings.Merge(opts.Settings)
	return opts
}

func (h *handlers) querySettings(r *http.Request) holiday.Settings {
	s := h.settings
	if v, err := strconv.ParseBool(r.URL.Query().Get("allow_weekends")); err == nil && v {
		s.AllowWeekends = true
	}
	return s
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a YYYY-MM-DD date")
		return time.Time{}, false
	}
	return d, true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid_year", "year must be between 1900 and 2200")
		return 0, false
	}
	return year, true
}
