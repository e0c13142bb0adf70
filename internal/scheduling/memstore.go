package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a mutex-guarded in-memory Store backing the test suite;
// the server runs on PgStore.
type MemStore struct {
	mu    sync.RWMutex
	appts map[uuid.UUID]Appointment
}

func NewMemStore() *MemStore {
	return &MemStore{appts: make(map[uuid.UUID]Appointment)}
}

func (m *MemStore) Create(ctx context.Context, appt *Appointment) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	appt.ID = uuid.New()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	m.appts[appt.ID] = *appt
	return appt.ID, nil
}

func (m *MemStore) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *MemStore) ListAll(ctx context.Context) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		out = append(out, a)
	}
	return out, nil
}

func (m *MemStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) ListByRoom(ctx context.Context, room int) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Appointment
	for _, a := range m.appts {
		if a.Room == room {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) Update(ctx context.Context, id uuid.UUID, mutate func(*Appointment) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok {
		return ErrAppointmentNotFound
	}

	// Mutate a copy so a failing mutator leaves the stored record as is.
	if err := mutate(&a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	m.appts[id] = a
	return nil
}

func (m *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *MemStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, a := range m.appts {
		if a.Slot.Time().Before(cutoff) {
			delete(m.appts, id)
			n++
		}
	}
	return n, nil
}
