package visit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
)

const EventNextVisitCalculated = "NEXT_VISIT_CALCULATED"

var (
	ErrPatientHasNoFrequency = errors.New("patient has no frequency assigned")
	ErrFrequencyInactive     = errors.New("frequency is inactive")
)

// Calculator is the part of frequency.Calculator the service depends on.
type Calculator interface {
	NextVisitDate(ctx context.Context, f *frequency.Frequency, lastVisit time.Time, opts frequency.Options) (*frequency.NextVisitCalculation, error)
}

type Service struct {
	repo     Repository
	calc     Calculator
	settings holiday.Settings
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService builds the next-visit orchestration. settings are the company
// holiday overrides every request starts from.
func NewService(repo Repository, calc Calculator, settings holiday.Settings, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		calc:     calc,
		settings: settings,
		logger:   logger.With().Str("component", "visit_service").Logger(),
		now:      time.Now,
	}
}

// CalculateNextVisit resolves the patient and its frequency, picks a base
// date and runs the calculator. With req.Persist the result is stored as the
// patient's next scheduled visit.
func (s *Service) CalculateNextVisit(ctx context.Context, patientID uuid.UUID, req NextVisitRequest) (*NextVisitResult, error) {
	patient, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if patient.FrequencyID == nil {
		return nil, ErrPatientHasNoFrequency
	}

	freq, err := s.repo.GetFrequencyByID(ctx, *patient.FrequencyID)
	if err != nil {
		if errors.Is(err, ErrFrequencyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load frequency: %w", err)
	}
	if !freq.IsActive {
		return nil, ErrFrequencyInactive
	}

	base, source := s.baseDate(patient, req.BaseDate)

	opts := req.Options
	opts.Settings = s.settings.Merge(opts.Settings)

	calc, err := s.calc.NextVisitDate(ctx, freq, base, opts)
	if err != nil {
		return nil, fmt.Errorf("calculate next visit: %w", err)
	}

	res := &NextVisitResult{
		PatientID:      patient.ID,
		FrequencyID:    freq.ID,
		FrequencyName:  freq.Name,
		BaseDate:       base,
		BaseDateSource: source,
		Calculation:    calc,
	}

	if req.Persist {
		if err := s.repo.UpdateNextScheduledVisit(ctx, patient.ID, calc.NextVisitDate); err != nil {
			return nil, fmt.Errorf("persist next visit: %w", err)
		}
		res.Persisted = true
	}

	s.logEvent(ctx, patient.ID, EventNextVisitCalculated, map[string]any{
		"frequency_id":     freq.ID.String(),
		"base_date":        base,
		"base_date_source": source,
		"next_visit_date":  calc.NextVisitDate,
		"rule":             calc.CalculationMethod,
		"adjustment_days":  calc.Metadata.AdjustmentDays,
		"persisted":        res.Persisted,
	})

	return res, nil
}

func (s *Service) baseDate(p *Patient, requested *time.Time) (time.Time, BaseDateSource) {
	switch {
	case requested != nil && !requested.IsZero():
		return *requested, BaseFromRequest
	case p.LastVisitDate != nil:
		return *p.LastVisitDate, BaseFromLastVisit
	default:
		return s.now(), BaseFromNow
	}
}

func (s *Service) logEvent(ctx context.Context, patientID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	id := patientID
	ev := EventLog{
		EventType: eventType,
		PatientID: &id,
		Payload:   data,
		CreatedAt: s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Str("patient_id", patientID.String()).
			Msg("failed to insert event log")
	}
}
