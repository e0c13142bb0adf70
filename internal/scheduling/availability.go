package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Checker answers whether a doctor or a room is free at a slot. It is a
// pure query over the store's candidate sets and never mutates anything.
// True always means free; a conflict makes the answer false.
type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// DoctorFree reports whether doctorID has no live appointment at slot.
// excluding, when non-nil, names an appointment that does not count as a
// conflict; reschedules pass the appointment being moved so that it
// cannot collide with itself.
func (c *Checker) DoctorFree(ctx context.Context, doctorID uuid.UUID, slot TimeSlot, excluding uuid.UUID) (bool, error) {
	appts, err := c.store.ListByDoctor(ctx, doctorID)
	if err != nil {
		return false, fmt.Errorf("list doctor appointments: %w", err)
	}
	return slotFree(appts, slot, excluding), nil
}

// RoomFree reports whether room has no live appointment at slot.
func (c *Checker) RoomFree(ctx context.Context, room int, slot TimeSlot, excluding uuid.UUID) (bool, error) {
	appts, err := c.store.ListByRoom(ctx, room)
	if err != nil {
		return false, fmt.Errorf("list room appointments: %w", err)
	}
	return slotFree(appts, slot, excluding), nil
}

func slotFree(appts []Appointment, slot TimeSlot, excluding uuid.UUID) bool {
	for _, a := range appts {
		if a.ID == excluding {
			continue
		}
		if a.Slot.Equal(slot) {
			return false
		}
	}
	return true
}
