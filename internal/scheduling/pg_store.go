package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique index names enforced on the appointments table. The service's
// per-resource locks make conflicts unreachable in the normal path; these
// constraints are the storage-level backstop, and a violation maps to the
// same conflict errors the availability check produces.
const (
	doctorSlotConstraint = "appointments_doctor_slot_key"
	roomSlotConstraint   = "appointments_room_slot_key"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var scheduledAt time.Time

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Room,
		&scheduledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Slot = NewTimeSlot(scheduledAt)
	return &a, nil
}

func conflictFromPg(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case doctorSlotConstraint:
			return ErrDoctorUnavailable
		case roomSlotConstraint:
			return ErrRoomUnavailable
		}
	}
	return err
}

func (r *PgStore) Create(ctx context.Context, appt *Appointment) (uuid.UUID, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
	`, id, appt.PatientID, appt.DoctorID, appt.Room, appt.Slot.Time())

	created, err := scanAppointment(row)
	if err != nil {
		return uuid.Nil, conflictFromPg(err)
	}

	*appt = *created
	return created.ID, nil
}

func (r *PgStore) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgStore) ListAll(ctx context.Context) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
		FROM appointments
		ORDER BY scheduled_at
	`)
}

func (r *PgStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY scheduled_at
	`, doctorID)
}

func (r *PgStore) ListByRoom(ctx context.Context, room int) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
		FROM appointments
		WHERE room = $1
		ORDER BY scheduled_at
	`, room)
}

func (r *PgStore) list(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgStore) Update(ctx context.Context, id uuid.UUID, mutate func(*Appointment) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, room, scheduled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)

	appt, err := scanAppointment(row)
	if err != nil {
		return err
	}

	if err := mutate(appt); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET room = $2,
		    scheduled_at = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, appt.Room, appt.Slot.Time())
	if err != nil {
		return conflictFromPg(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return conflictFromPg(err)
	}
	return nil
}

func (r *PgStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE scheduled_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
