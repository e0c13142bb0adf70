package scheduling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// slotLayout is the wire and display form of a time slot. It captures the
// date and time to the minute only and does not take timezones into
// account; all slots live in the hospital's single local zone.
const slotLayout = "2006-01-02 15:04"

// TimeSlot pins an appointment to a single minute on the calendar.
// Appointments carry no duration, so two slots conflict iff they are
// exactly equal. The zero TimeSlot is invalid and never conflicts.
type TimeSlot struct {
	at time.Time
}

// NewTimeSlot builds a slot from a wall-clock time, truncated to the
// minute. The location of t is discarded.
func NewTimeSlot(t time.Time) TimeSlot {
	return TimeSlot{at: time.Date(
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.Local,
	)}
}

// ParseTimeSlot parses the "2006-01-02 15:04" form used on the wire.
func ParseTimeSlot(s string) (TimeSlot, error) {
	t, err := time.ParseInLocation(slotLayout, s, time.Local)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("parse time slot %q: %w", s, err)
	}
	return TimeSlot{at: t}, nil
}

// Equal reports whether both slots name the same calendar minute.
func (s TimeSlot) Equal(o TimeSlot) bool {
	return s.at.Equal(o.at)
}

// Before reports whether s is earlier than o.
func (s TimeSlot) Before(o TimeSlot) bool {
	return s.at.Before(o.at)
}

// IsZero reports whether the slot was never set.
func (s TimeSlot) IsZero() bool {
	return s.at.IsZero()
}

// Time returns the slot as a wall-clock time at minute precision.
func (s TimeSlot) Time() time.Time {
	return s.at
}

func (s TimeSlot) String() string {
	return s.at.Format(slotLayout)
}

func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	slot, err := ParseTimeSlot(raw)
	if err != nil {
		return err
	}
	*s = slot
	return nil
}

// Appointment is a booked visit: one patient with one doctor in one room
// at one slot. The ID is assigned by the store on creation and never
// changes; Slot and Room are the only fields that change afterwards.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Room      int
	Slot      TimeSlot
	CreatedAt time.Time
	UpdatedAt time.Time
}
