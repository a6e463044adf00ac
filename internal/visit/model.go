package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type Patient struct {
	ID                     uuid.UUID
	Name                   string
	FrequencyID            *uuid.UUID
	LastVisitDate          *time.Time
	NextScheduledVisitDate *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type Visit struct {
	ID          uuid.UUID
	PatientID   uuid.UUID
	Status      Status
	ScheduledAt time.Time
	CompletedAt *time.Time
}

type EventLog struct {
	ID        int64
	EventType string
	PatientID *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}

// BaseDateSource tells where the reference date of a calculation came from.
type BaseDateSource string

const (
	BaseFromRequest   BaseDateSource = "request"
	BaseFromLastVisit BaseDateSource = "last_visit"
	BaseFromNow       BaseDateSource = "now"
)

type NextVisitRequest struct {
	BaseDate *time.Time        `json:"base_date,omitempty"`
	Persist  bool              `json:"persist"`
	Options  frequency.Options `json:"options"`
}

type NextVisitResult struct {
	PatientID      uuid.UUID                       `json:"patient_id"`
	FrequencyID    uuid.UUID                       `json:"frequency_id"`
	FrequencyName  string                          `json:"frequency_name"`
	BaseDate       time.Time                       `json:"base_date"`
	BaseDateSource BaseDateSource                  `json:"base_date_source"`
	Persisted      bool                            `json:"persisted"`
	Calculation    *frequency.NextVisitCalculation `json:"calculation"`
}
