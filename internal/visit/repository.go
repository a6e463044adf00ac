package visit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrFrequencyNotFound = errors.New("frequency not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// GetPatientByID also resolves the patient's last completed visit.
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetFrequencyByID(ctx context.Context, id uuid.UUID) (*frequency.Frequency, error)

	UpdateNextScheduledVisit(ctx context.Context, patientID uuid.UUID, next time.Time) error

	// Seeding
	CreateFrequency(ctx context.Context, f *frequency.Frequency) error
	CreatePatient(ctx context.Context, p *Patient) error
	CreateVisit(ctx context.Context, v *Visit) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
