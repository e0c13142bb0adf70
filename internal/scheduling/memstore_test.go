package scheduling_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justirack/HospitalManagement/internal/scheduling"
)

func TestMemStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := scheduling.NewMemStore()

	appt := seedAppointment(t, store, uuid.New(), 5, slotAt(t, "2024-01-10 09:00"))

	boom := errors.New("boom")
	err := store.Update(ctx, appt.ID, func(a *scheduling.Appointment) error {
		a.Room = 9
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Room, "a failed mutator must not change the record")
}

func TestMemStoreUpdateUnknownID(t *testing.T) {
	store := scheduling.NewMemStore()

	err := store.Update(context.Background(), uuid.New(), func(a *scheduling.Appointment) error {
		return nil
	})
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)
}

func TestMemStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := scheduling.NewMemStore()

	appt := seedAppointment(t, store, uuid.New(), 5, slotAt(t, "2024-01-10 09:00"))

	got, err := store.Get(ctx, appt.ID)
	require.NoError(t, err)
	got.Room = 9

	again, err := store.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Room, "mutating a returned record must not write through")
}

func TestMemStorePurgeBefore(t *testing.T) {
	ctx := context.Background()
	store := scheduling.NewMemStore()

	old := seedAppointment(t, store, uuid.New(), 1, slotAt(t, "2020-06-01 10:00"))
	recent := seedAppointment(t, store, uuid.New(), 2, slotAt(t, "2024-01-10 09:00"))

	cutoff := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	n, err := store.PurgeBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)

	_, err = store.Get(ctx, recent.ID)
	assert.NoError(t, err)
}

func TestMemStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := scheduling.NewMemStore()

	doctor := uuid.New()
	seedAppointment(t, store, doctor, 5, slotAt(t, "2024-01-10 09:00"))
	seedAppointment(t, store, doctor, 6, slotAt(t, "2024-01-10 10:00"))
	seedAppointment(t, store, uuid.New(), 5, slotAt(t, "2024-01-10 11:00"))

	byDoctor, err := store.ListByDoctor(ctx, doctor)
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	byRoom, err := store.ListByRoom(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, byRoom, 2)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
