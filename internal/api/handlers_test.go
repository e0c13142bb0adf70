package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justirack/HospitalManagement/internal/api"
	"github.com/justirack/HospitalManagement/internal/directory"
	"github.com/justirack/HospitalManagement/internal/lock"
	"github.com/justirack/HospitalManagement/internal/scheduling"
)

type testServer struct {
	srv     *httptest.Server
	patient uuid.UUID
	doctor  uuid.UUID
	doctor2 uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := directory.NewMemDirectory()
	patient := uuid.New()
	doctor := uuid.New()
	doctor2 := uuid.New()
	dir.AddPatient(directory.Patient{ID: patient, Name: "Ann Chovey"})
	dir.AddDoctor(directory.Doctor{ID: doctor, Name: "Dr. Able"})
	dir.AddDoctor(directory.Doctor{ID: doctor2, Name: "Dr. Baker"})
	for room := 1; room <= 10; room++ {
		dir.AddRoom(directory.Room{Number: room, Floor: 1})
	}

	svc := scheduling.NewService(scheduling.NewMemStore(), dir, lock.NewKeyMutexLocker(), zerolog.Nop())

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Logger:  zerolog.Nop(),
		Env:     "test",
		Version: "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, patient: patient, doctor: doctor, doctor2: doctor2}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	return resp, buf.Bytes()
}

func (ts *testServer) book(t *testing.T, room int, slot string) api.AppointmentResponse {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
		PatientID: ts.patient.String(),
		DoctorID:  ts.doctor.String(),
		Room:      room,
		Slot:      slot,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var appt api.AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &appt))
	return appt
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var er api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	return er.Error
}

func TestBookEndpoint(t *testing.T) {
	t.Run("creates an appointment", func(t *testing.T) {
		ts := newTestServer(t)

		appt := ts.book(t, 5, "2024-01-10 09:00")
		assert.NotEqual(t, uuid.Nil, appt.ID)
		assert.Equal(t, 5, appt.Room)
		assert.Equal(t, "2024-01-10 09:00", appt.Slot)
	})

	t.Run("doctor conflict maps to 409", func(t *testing.T) {
		ts := newTestServer(t)
		ts.book(t, 5, "2024-01-10 09:00")

		resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
			PatientID: ts.patient.String(),
			DoctorID:  ts.doctor.String(),
			Room:      7,
			Slot:      "2024-01-10 09:00",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "doctor_unavailable", errorCode(t, body))
	})

	t.Run("unknown patient maps to 404", func(t *testing.T) {
		ts := newTestServer(t)

		resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
			PatientID: uuid.NewString(),
			DoctorID:  ts.doctor.String(),
			Room:      5,
			Slot:      "2024-01-10 09:00",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "patient_not_found", errorCode(t, body))
	})

	t.Run("bad uuid maps to 400", func(t *testing.T) {
		ts := newTestServer(t)

		resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
			PatientID: "not-a-uuid",
			DoctorID:  ts.doctor.String(),
			Room:      5,
			Slot:      "2024-01-10 09:00",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_patient_id", errorCode(t, body))
	})

	t.Run("bad slot maps to 400", func(t *testing.T) {
		ts := newTestServer(t)

		resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
			PatientID: ts.patient.String(),
			DoctorID:  ts.doctor.String(),
			Room:      5,
			Slot:      "tomorrow-ish",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_slot", errorCode(t, body))
	})
}

func TestGetAndListEndpoints(t *testing.T) {
	ts := newTestServer(t)
	appt := ts.book(t, 5, "2024-01-10 09:00")
	ts.book(t, 6, "2024-01-10 10:00")

	t.Run("get by id", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got api.AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, appt.ID, got.ID)
	})

	t.Run("get unknown id", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/appointments/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "appointment_not_found", errorCode(t, body))
	})

	t.Run("list all", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/appointments", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list api.AppointmentListResponse
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list.Appointments, 2)
	})

	t.Run("list by doctor", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/appointments", ts.doctor), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list api.AppointmentListResponse
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list.Appointments, 2)
	})
}

func TestRescheduleEndpoints(t *testing.T) {
	t.Run("date change", func(t *testing.T) {
		ts := newTestServer(t)
		appt := ts.book(t, 5, "2024-01-10 09:00")

		resp, body := ts.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/date",
			api.RescheduleDateRequest{Slot: "2024-01-11 14:30"})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

		var moved api.AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &moved))
		assert.Equal(t, "2024-01-11 14:30", moved.Slot)
	})

	t.Run("room change", func(t *testing.T) {
		ts := newTestServer(t)
		appt := ts.book(t, 5, "2024-01-10 09:00")

		resp, body := ts.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/room",
			api.RescheduleRoomRequest{Room: 7})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

		var moved api.AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &moved))
		assert.Equal(t, 7, moved.Room)
		assert.Equal(t, "2024-01-10 09:00", moved.Slot)
	})

	t.Run("room change conflict maps to 409", func(t *testing.T) {
		ts := newTestServer(t)
		appt := ts.book(t, 5, "2024-01-10 09:00")

		// Another doctor occupies room 7 at the same slot.
		resp, body := ts.do(t, http.MethodPost, "/appointments", api.BookAppointmentRequest{
			PatientID: ts.patient.String(),
			DoctorID:  ts.doctor2.String(),
			Room:      7,
			Slot:      "2024-01-10 09:00",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

		resp, body = ts.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/room",
			api.RescheduleRoomRequest{Room: 7})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "room_unavailable", errorCode(t, body))
	})

	t.Run("unknown appointment maps to 404", func(t *testing.T) {
		ts := newTestServer(t)

		resp, body := ts.do(t, http.MethodPatch, "/appointments/"+uuid.NewString()+"/date",
			api.RescheduleDateRequest{Slot: "2024-01-11 14:30"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "appointment_not_found", errorCode(t, body))
	})
}

func TestLivenessEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var live api.LivenessResponse
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "test", live.Env)
}

func TestCancelEndpoint(t *testing.T) {
	ts := newTestServer(t)
	appt := ts.book(t, 5, "2024-01-10 09:00")

	resp, _ := ts.do(t, http.MethodDelete, "/appointments/"+appt.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "appointment_not_found", errorCode(t, body))

	resp, body = ts.do(t, http.MethodDelete, "/appointments/"+appt.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "appointment_not_found", errorCode(t, body))
}
