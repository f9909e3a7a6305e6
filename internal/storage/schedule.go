package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/hsinyuliao/salonbook/internal/db"
	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/schedule"
)

type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func scanConfig(row pgx.Row) (model.ScheduleConfig, error) {
	var cfg model.ScheduleConfig
	var unavailable, reserved []byte
	err := row.Scan(&cfg.ID, &unavailable, &cfg.LastBookableDate, &reserved, &cfg.UpdatedAt)
	if err != nil {
		return model.ScheduleConfig{}, err
	}
	cfg.UnavailableTimeSlots = json.RawMessage(unavailable)
	cfg.ReservedTimeSlots = json.RawMessage(reserved)
	return cfg, nil
}

// Get returns the live schedule configuration. There is exactly one row in
// normal operation; callers read it by id.
func (r *ScheduleRepository) Get(ctx context.Context, id string) (model.ScheduleConfig, error) {
	return scanConfig(r.pool.QueryRow(ctx, `
		SELECT id, unavailable_time_slots, last_bookable_date, reserved_time_slots, updated_at
		FROM schedule_config
		WHERE id = $1
	`, id))
}

// Apply writes an authorized patch as one column-scoped UPDATE: COALESCE
// keeps every column the patch did not carry, so a concurrent admin write
// and user write land on disjoint columns and neither is lost. The single
// statement is the whole read-modify-write, so no explicit transaction or
// version token is needed.
func (r *ScheduleRepository) Apply(ctx context.Context, id string, p schedule.Patch) (model.ScheduleConfig, error) {
	var unavailable, reserved any
	if len(p.UnavailableTimeSlots) > 0 {
		unavailable = []byte(p.UnavailableTimeSlots)
	}
	if len(p.ReservedTimeSlots) > 0 {
		reserved = []byte(p.ReservedTimeSlots)
	}

	return scanConfig(r.pool.QueryRow(ctx, `
		UPDATE schedule_config
		SET unavailable_time_slots = COALESCE($2, unavailable_time_slots),
			last_bookable_date = COALESCE($3, last_bookable_date),
			reserved_time_slots = COALESCE($4, reserved_time_slots),
			updated_at = now()
		WHERE id = $1
		RETURNING id, unavailable_time_slots, last_bookable_date, reserved_time_slots, updated_at
	`, id, unavailable, p.LastBookableDate, reserved))
}
