package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgEducationRepository записи об образовании преподавателей
type PgEducationRepository struct {
	*base.Repository
}

func NewEducationRepository(db base.Querier) *PgEducationRepository {
	return &PgEducationRepository{Repository: base.NewRepository(db)}
}

const educationColumns = `id, tutor_profile_id, institute, degree, field_of_study, start_year, end_year, is_current, created_at, updated_at`

func scanEducation(row pgx.Row) (*model.Education, error) {
	e := &model.Education{}
	err := row.Scan(
		&e.ID,
		&e.TutorProfileID,
		&e.Institute,
		&e.Degree,
		&e.FieldOfStudy,
		&e.StartYear,
		&e.EndYear,
		&e.IsCurrent,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

// Create добавляет запись об образовании
func (r *PgEducationRepository) Create(ctx context.Context, e *model.Education) error {
	query := `
		INSERT INTO educations (tutor_profile_id, institute, degree, field_of_study, start_year, end_year, is_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		e.TutorProfileID,
		e.Institute,
		e.Degree,
		e.FieldOfStudy,
		e.StartYear,
		e.EndYear,
		e.IsCurrent,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create education: %w", err)
	}

	return nil
}

func (r *PgEducationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Education, error) {
	query := `SELECT ` + educationColumns + ` FROM educations WHERE id = $1`

	e, err := scanEducation(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get education by id: %w", err)
	}

	return e, nil
}

// Update перезаписывает все поля записи
func (r *PgEducationRepository) Update(ctx context.Context, e *model.Education) error {
	query := `
		UPDATE educations
		SET institute = $1, degree = $2, field_of_study = $3,
		    start_year = $4, end_year = $5, is_current = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query,
		e.Institute,
		e.Degree,
		e.FieldOfStudy,
		e.StartYear,
		e.EndYear,
		e.IsCurrent,
		e.ID,
	).Scan(&e.UpdatedAt)
	if base.IsNotFound(err) {
		return fmt.Errorf("education not found")
	}
	if err != nil {
		return fmt.Errorf("update education: %w", err)
	}

	return nil
}

func (r *PgEducationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM educations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete education: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("education not found")
	}

	return nil
}

// ListByTutor сначала последние по году начала
func (r *PgEducationRepository) ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Education, error) {
	query := `
		SELECT ` + educationColumns + `
		FROM educations
		WHERE tutor_profile_id = $1
		ORDER BY start_year DESC, created_at
	`

	rows, err := r.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list educations: %w", err)
	}
	defer rows.Close()

	var result []*model.Education
	for rows.Next() {
		e, err := scanEducation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		result = append(result, e)
	}

	return result, rows.Err()
}
