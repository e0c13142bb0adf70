package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemDirectory is an in-memory Directory for tests, the simulator, and
// the single-process dev mode.
type MemDirectory struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
	doctors  map[uuid.UUID]Doctor
	rooms    map[int]Room
}

func NewMemDirectory() *MemDirectory {
	return &MemDirectory{
		patients: make(map[uuid.UUID]Patient),
		doctors:  make(map[uuid.UUID]Doctor),
		rooms:    make(map[int]Room),
	}
}

func (d *MemDirectory) AddPatient(p Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[p.ID] = p
}

func (d *MemDirectory) AddDoctor(doc Doctor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[doc.ID] = doc
}

func (d *MemDirectory) AddRoom(r Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[r.Number] = r
}

func (d *MemDirectory) Patient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (d *MemDirectory) Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &doc, nil
}

func (d *MemDirectory) Room(ctx context.Context, number int) (*Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[number]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &r, nil
}
