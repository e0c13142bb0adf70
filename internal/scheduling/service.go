package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justirack/HospitalManagement/internal/directory"
	"github.com/justirack/HospitalManagement/internal/lock"
)

// Service owns the exclusivity invariant: no doctor and no room is ever
// committed to two live appointments at the same slot. Every mutation
// runs its availability checks and its commit inside a critical section
// serialized per doctor and per room, so check-then-act cannot race for
// the same resource while disjoint resources stay fully parallel.
type Service struct {
	store   Store
	dir     directory.Directory
	checker *Checker
	locker  lock.Locker
	log     zerolog.Logger
}

func NewService(store Store, dir directory.Directory, locker lock.Locker, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		dir:     dir,
		checker: NewChecker(store),
		locker:  locker,
		log:     log,
	}
}

// Book creates an appointment for patientID with doctorID in room at
// slot. Both the doctor and the room must be free at slot; if either is
// taken the booking fails with the matching conflict error and nothing
// is persisted.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, room int, slot TimeSlot) (*Appointment, error) {
	if room <= 0 {
		return nil, ErrInvalidRoom
	}
	if slot.IsZero() {
		return nil, ErrInvalidSlot
	}

	if _, err := s.dir.Patient(ctx, patientID); err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	if _, err := s.dir.Doctor(ctx, doctorID); err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve doctor: %w", err)
	}
	if _, err := s.dir.Room(ctx, room); err != nil {
		if errors.Is(err, directory.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	var booked *Appointment

	keys := []string{lock.DoctorKey(doctorID.String()), lock.RoomKey(room)}
	err := s.locker.WithLocks(ctx, keys, func(lockCtx context.Context) error {
		free, err := s.checker.DoctorFree(lockCtx, doctorID, slot, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check doctor availability: %w", err)
		}
		if !free {
			return ErrDoctorUnavailable
		}

		free, err = s.checker.RoomFree(lockCtx, room, slot, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check room availability: %w", err)
		}
		if !free {
			return ErrRoomUnavailable
		}

		appt := &Appointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			Room:      room,
			Slot:      slot,
		}
		if _, err := s.store.Create(lockCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		booked = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	s.log.Info().
		Stringer("appointment_id", booked.ID).
		Stringer("doctor_id", doctorID).
		Int("room", room).
		Str("slot", slot.String()).
		Msg("appointment booked")

	return booked, nil
}

// Cancel removes the appointment. Cancelling an id that does not exist,
// including one already cancelled, returns ErrAppointmentNotFound; the
// second-cancel failure is the observable signal that the delete
// happened.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.log.Info().Stringer("appointment_id", id).Msg("appointment cancelled")
	return nil
}

// RescheduleDate moves an appointment to newSlot. Both the doctor and
// the current room are re-validated at newSlot, excluding the moved
// appointment itself so that moving to its own slot is a no-op success.
func (s *Service) RescheduleDate(ctx context.Context, id uuid.UUID, newSlot TimeSlot) (*Appointment, error) {
	if newSlot.IsZero() {
		return nil, ErrInvalidSlot
	}

	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var moved *Appointment

	keys := []string{lock.DoctorKey(appt.DoctorID.String()), lock.RoomKey(appt.Room)}
	err = s.locker.WithLocks(ctx, keys, func(lockCtx context.Context) error {
		// Re-read inside the critical section; the record may have moved
		// since the unlocked read above.
		current, err := s.store.Get(lockCtx, id)
		if err != nil {
			return err
		}
		// The room key above came from the unlocked read. If a concurrent
		// room change landed in between, the held key guards the wrong
		// room; fail so the caller retries against fresh keys.
		if current.Room != appt.Room {
			return ErrSlotContended
		}

		free, err := s.checker.DoctorFree(lockCtx, current.DoctorID, newSlot, id)
		if err != nil {
			return fmt.Errorf("check doctor availability: %w", err)
		}
		if !free {
			return ErrDoctorUnavailable
		}

		free, err = s.checker.RoomFree(lockCtx, current.Room, newSlot, id)
		if err != nil {
			return fmt.Errorf("check room availability: %w", err)
		}
		if !free {
			return ErrRoomUnavailable
		}

		if err := s.store.Update(lockCtx, id, func(a *Appointment) error {
			a.Slot = newSlot
			return nil
		}); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		updated, err := s.store.Get(lockCtx, id)
		if err != nil {
			return err
		}
		moved = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	s.log.Info().
		Stringer("appointment_id", id).
		Str("slot", newSlot.String()).
		Msg("appointment date changed")

	return moved, nil
}

// RescheduleRoom moves an appointment into newRoom at its current slot.
// The target room is re-validated; the doctor key is also held so the
// slot read here cannot change under a concurrent date reschedule.
func (s *Service) RescheduleRoom(ctx context.Context, id uuid.UUID, newRoom int) (*Appointment, error) {
	if newRoom <= 0 {
		return nil, ErrInvalidRoom
	}

	if _, err := s.dir.Room(ctx, newRoom); err != nil {
		if errors.Is(err, directory.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var moved *Appointment

	keys := []string{lock.DoctorKey(appt.DoctorID.String()), lock.RoomKey(newRoom)}
	err = s.locker.WithLocks(ctx, keys, func(lockCtx context.Context) error {
		current, err := s.store.Get(lockCtx, id)
		if err != nil {
			return err
		}

		free, err := s.checker.RoomFree(lockCtx, newRoom, current.Slot, id)
		if err != nil {
			return fmt.Errorf("check room availability: %w", err)
		}
		if !free {
			return ErrRoomUnavailable
		}

		if err := s.store.Update(lockCtx, id, func(a *Appointment) error {
			a.Room = newRoom
			return nil
		}); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		updated, err := s.store.Get(lockCtx, id)
		if err != nil {
			return err
		}
		moved = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	s.log.Info().
		Stringer("appointment_id", id).
		Int("room", newRoom).
		Msg("appointment room changed")

	return moved, nil
}

// Appointment returns a single appointment by id.
func (s *Service) Appointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.Get(ctx, id)
}

// Appointments returns every live appointment.
func (s *Service) Appointments(ctx context.Context) ([]Appointment, error) {
	appts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// DoctorAppointments returns a doctor's live appointments.
func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	appts, err := s.store.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return appts, nil
}

// PurgeBefore removes appointments older than cutoff. Called by the
// retention worker.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge appointments: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("purged", n).Time("cutoff", cutoff).Msg("old appointments purged")
	}
	return n, nil
}
