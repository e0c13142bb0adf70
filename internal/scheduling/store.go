package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the durable appointment collection the service operates on.
// Single-record mutations must be atomic with respect to concurrent
// readers: a reader sees a record fully before or fully after a change,
// never in between. The service layers its own per-resource serialization
// on top; the store is not required to serialize check-then-act sequences
// itself.
type Store interface {
	// Create persists a new appointment, assigns its ID, and returns it.
	Create(ctx context.Context, appt *Appointment) (uuid.UUID, error)

	// Get returns the appointment or ErrAppointmentNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)

	ListAll(ctx context.Context) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListByRoom(ctx context.Context, room int) ([]Appointment, error)

	// Update applies mutate to the stored record atomically. If mutate
	// returns an error the record is left untouched and that error is
	// returned. Returns ErrAppointmentNotFound for unknown ids.
	Update(ctx context.Context, id uuid.UUID, mutate func(*Appointment) error) error

	// Delete removes the appointment, or returns ErrAppointmentNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// PurgeBefore removes every appointment whose slot is earlier than
	// cutoff and reports how many were removed. Used by the retention
	// worker.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
