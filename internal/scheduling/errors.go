package scheduling

import (
	"errors"
	"fmt"
)

// ErrConflict is the common ancestor of both exclusivity failures so that
// callers can match either side with a single errors.Is check.
var ErrConflict = errors.New("scheduling conflict")

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorUnavailable   = fmt.Errorf("doctor already booked at that slot: %w", ErrConflict)
	ErrRoomUnavailable     = fmt.Errorf("room already booked at that slot: %w", ErrConflict)
	ErrInvalidRoom         = errors.New("room number must be a positive integer")
	ErrInvalidSlot         = errors.New("time slot must be set")

	// ErrSlotContended is returned when the per-resource lock could not be
	// acquired promptly, meaning another scheduling operation on the same
	// doctor or room is in flight. Callers should retry.
	ErrSlotContended = fmt.Errorf("resource is being scheduled concurrently, please retry: %w", ErrConflict)
)
