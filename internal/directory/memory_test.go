package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justirack/HospitalManagement/internal/directory"
)

func TestMemDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemDirectory()

	patientID := uuid.New()
	doctorID := uuid.New()
	dir.AddPatient(directory.Patient{ID: patientID, Name: "Ann Chovey"})
	dir.AddDoctor(directory.Doctor{ID: doctorID, Name: "Dr. Able"})
	dir.AddRoom(directory.Room{Number: 5, Floor: 2})

	p, err := dir.Patient(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Chovey", p.Name)

	d, err := dir.Doctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Able", d.Name)

	r, err := dir.Room(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Floor)
}

func TestMemDirectoryNotFound(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemDirectory()

	_, err := dir.Patient(ctx, uuid.New())
	assert.ErrorIs(t, err, directory.ErrPatientNotFound)

	_, err = dir.Doctor(ctx, uuid.New())
	assert.ErrorIs(t, err, directory.ErrDoctorNotFound)

	_, err = dir.Room(ctx, 404)
	assert.ErrorIs(t, err, directory.ErrRoomNotFound)
}
