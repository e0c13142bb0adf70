// Package directory resolves and validates the identities the scheduler
// references: patients, doctors, and rooms. The scheduler consumes it as
// a collaborator and never writes through it.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrRoomNotFound    = errors.New("room not found")
)

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Room struct {
	Number int
	Floor  int
}

// Directory looks up a referenced entity, failing with the matching
// not-found sentinel when the id is unknown.
type Directory interface {
	Patient(ctx context.Context, id uuid.UUID) (*Patient, error)
	Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Room(ctx context.Context, number int) (*Room, error)
}
