package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgSlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.Querier) *PgSlotRepository {
	return &PgSlotRepository{Repository: base.NewRepository(db)}
}

const slotColumns = `id, tutor_profile_id, date, start_time, end_time, is_booked, created_at, updated_at`

func scanSlot(row pgx.Row) (*model.TimeSlot, error) {
	slot := &model.TimeSlot{}
	err := row.Scan(
		&slot.ID,
		&slot.TutorProfileID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	return slot, err
}

// Create создаёт новый слот
func (r *PgSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (tutor_profile_id, date, start_time, end_time, is_booked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.TutorProfileID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.IsBooked,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *PgSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return r.get(ctx, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, id)
}

// GetByIDForUpdate получает слот и держит блокировку строки до конца транзакции
func (r *PgSlotRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return r.get(ctx, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1 FOR UPDATE`, id)
}

func (r *PgSlotRepository) get(ctx context.Context, query string, id uuid.UUID) (*model.TimeSlot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// Update сохраняет дату и время слота. Флаг is_booked здесь не меняется.
func (r *PgSlotRepository) Update(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		UPDATE time_slots
		SET date = $1, start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, slot.Date, slot.StartTime, slot.EndTime, slot.ID).Scan(&slot.UpdatedAt)
	if base.IsNotFound(err) {
		return fmt.Errorf("slot not found")
	}
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}

	return nil
}

// SetBooked выставляет флаг занятости слота
func (r *PgSlotRepository) SetBooked(ctx context.Context, id uuid.UUID, booked bool) error {
	query := `
		UPDATE time_slots
		SET is_booked = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, booked, id)
	if err != nil {
		return fmt.Errorf("set slot booked: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// Delete удаляет слот
func (r *PgSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// ListByTutorAndDate все слоты преподавателя на дату
func (r *PgSlotRepository) ListByTutorAndDate(ctx context.Context, profileID uuid.UUID, date time.Time) ([]*model.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE tutor_profile_id = $1 AND date = $2
		ORDER BY start_time
	`
	return r.list(ctx, query, profileID, date)
}

// ListByTutorRange слоты преподавателя с датой в [from, to)
func (r *PgSlotRepository) ListByTutorRange(ctx context.Context, profileID uuid.UUID, from, to time.Time) ([]*model.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE tutor_profile_id = $1
		  AND date >= $2
		  AND date < $3
		ORDER BY date, start_time
	`
	return r.list(ctx, query, profileID, from, to)
}

func (r *PgSlotRepository) list(ctx context.Context, query string, args ...any) ([]*model.TimeSlot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
