package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgAvailabilityRepository управляет еженедельными окнами доступности
type PgAvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(db base.Querier) *PgAvailabilityRepository {
	return &PgAvailabilityRepository{Repository: base.NewRepository(db)}
}

const availabilityColumns = `id, tutor_profile_id, day_of_week, start_time, end_time, created_at, updated_at`

func scanAvailability(row pgx.Row) (*model.Availability, error) {
	a := &model.Availability{}
	err := row.Scan(
		&a.ID,
		&a.TutorProfileID,
		&a.DayOfWeek,
		&a.StartTime,
		&a.EndTime,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Create создаёт окно доступности
func (r *PgAvailabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO availabilities (tutor_profile_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query, a.TutorProfileID, a.DayOfWeek, a.StartTime, a.EndTime).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}

	return nil
}

// GetByID получает окно по ID
func (r *PgAvailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availabilities WHERE id = $1`

	a, err := scanAvailability(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get availability by id: %w", err)
	}

	return a, nil
}

// Update сохраняет день и время окна
func (r *PgAvailabilityRepository) Update(ctx context.Context, a *model.Availability) error {
	query := `
		UPDATE availabilities
		SET day_of_week = $1, start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, a.DayOfWeek, a.StartTime, a.EndTime, a.ID).Scan(&a.UpdatedAt)
	if base.IsNotFound(err) {
		return fmt.Errorf("availability not found")
	}
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}

	return nil
}

// Delete удаляет окно
func (r *PgAvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("availability not found")
	}

	return nil
}

// ListByTutor все окна преподавателя
func (r *PgAvailabilityRepository) ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE tutor_profile_id = $1
		ORDER BY day_of_week, start_time
	`
	return r.list(ctx, query, profileID)
}

// ListByTutorAndDay окна преподавателя на указанный день недели
func (r *PgAvailabilityRepository) ListByTutorAndDay(ctx context.Context, profileID uuid.UUID, day model.DayOfWeek) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE tutor_profile_id = $1 AND day_of_week = $2
		ORDER BY start_time
	`
	return r.list(ctx, query, profileID, day)
}

func (r *PgAvailabilityRepository) list(ctx context.Context, query string, args ...any) ([]*model.Availability, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	defer rows.Close()

	var result []*model.Availability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		result = append(result, a)
	}

	return result, rows.Err()
}
