package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hsinyuliao/salonbook/internal/db"
	"github.com/hsinyuliao/salonbook/internal/model"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// SlotTaken is the friendly pre-check before inserting. The unique index on
// (appointment_date, time_slot) remains authoritative under concurrency.
func (r *AppointmentRepository) SlotTaken(ctx context.Context, tx pgx.Tx, date, timeSlot string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE appointment_date = $1 AND time_slot = $2
		)
	`, date, timeSlot).Scan(&exists)
	return exists, err
}

func (r *AppointmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, owner_id, appointment_date, time_slot, body_part,
			 nail_removal, nail_extension, name, birthday, email, phone, line_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, a.ID, a.OwnerID, a.Date, a.TimeSlot, a.BodyPart,
		a.NailRemoval, a.NailExtension, a.Name, a.Birthday, a.Email, a.Phone, a.LineID,
	).Scan(&a.CreatedAt)
}

// List returns the whole ledger. Visibility, ordering and pagination are
// applied by the caller; the booked slot set for a single salon stays small.
func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, appointment_date, time_slot, body_part,
			nail_removal, nail_extension, name, birthday, email, phone, line_id, created_at
		FROM appointments
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Date, &a.TimeSlot, &a.BodyPart,
			&a.NailRemoval, &a.NailExtension, &a.Name, &a.Birthday, &a.Email,
			&a.Phone, &a.LineID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
