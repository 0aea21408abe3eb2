package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tutorUserConstraint = "tutor_profiles_user_uq"

type PgTutorRepository struct {
	*base.Repository
}

func NewTutorRepository(db base.Querier) *PgTutorRepository {
	return &PgTutorRepository{Repository: base.NewRepository(db)}
}

const tutorColumns = `id, user_id, hourly_rate, is_featured, created_at, updated_at`

func scanTutor(row pgx.Row) (*model.TutorProfile, error) {
	p := &model.TutorProfile{}
	err := row.Scan(&p.ID, &p.UserID, &p.HourlyRate, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create создаёт профиль преподавателя; у пользователя может быть только один профиль
func (r *PgTutorRepository) Create(ctx context.Context, profile *model.TutorProfile) error {
	query := `
		INSERT INTO tutor_profiles (user_id, hourly_rate)
		VALUES ($1, $2)
		RETURNING id, is_featured, created_at, updated_at
	`

	err := r.QueryRow(ctx, query, profile.UserID, profile.HourlyRate).
		Scan(&profile.ID, &profile.IsFeatured, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err, tutorUserConstraint) {
			return apperr.ErrTutorProfileExists
		}
		return fmt.Errorf("create tutor profile: %w", err)
	}

	return nil
}

func (r *PgTutorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TutorProfile, error) {
	return r.get(ctx, `SELECT `+tutorColumns+` FROM tutor_profiles WHERE id = $1`, id)
}

func (r *PgTutorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.TutorProfile, error) {
	return r.get(ctx, `SELECT `+tutorColumns+` FROM tutor_profiles WHERE user_id = $1`, userID)
}

func (r *PgTutorRepository) get(ctx context.Context, query string, id uuid.UUID) (*model.TutorProfile, error) {
	p, err := scanTutor(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor profile: %w", err)
	}
	return p, nil
}

// LockByID сериализует изменения расписания одного преподавателя
func (r *PgTutorRepository) LockByID(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := r.QueryRow(ctx, `SELECT id FROM tutor_profiles WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return fmt.Errorf("lock tutor profile: %w", err)
	}
	return nil
}

func (r *PgTutorRepository) UpdateHourlyRate(ctx context.Context, id uuid.UUID, rate float64) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE tutor_profiles SET hourly_rate = $1, updated_at = now() WHERE id = $2`, rate, id)
	if err != nil {
		return fmt.Errorf("update hourly rate: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tutor profile not found")
	}
	return nil
}

func (r *PgTutorRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE tutor_profiles SET is_featured = $1, updated_at = now() WHERE id = $2`, featured, id)
	if err != nil {
		return fmt.Errorf("set featured: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tutor profile not found")
	}
	return nil
}

// ListIDs идентификаторы всех профилей, для фоновых задач
func (r *PgTutorRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.Query(ctx, `SELECT id FROM tutor_profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tutor profiles: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tutor profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgTutorRepository) HasSubject(ctx context.Context, profileID, subjectID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM tutor_subjects
			WHERE tutor_profile_id = $1 AND subject_id = $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, profileID, subjectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check tutor subject: %w", err)
	}
	return exists, nil
}

func (r *PgTutorRepository) GetSubject(ctx context.Context, profileID, subjectID uuid.UUID) (*model.TutorSubject, error) {
	query := `
		SELECT id, tutor_profile_id, subject_id, created_at
		FROM tutor_subjects
		WHERE tutor_profile_id = $1 AND subject_id = $2
	`

	var ts model.TutorSubject
	err := r.QueryRow(ctx, query, profileID, subjectID).Scan(&ts.ID, &ts.TutorProfileID, &ts.SubjectID, &ts.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor subject: %w", err)
	}
	return &ts, nil
}

func (r *PgTutorRepository) ListSubjectIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.Query(ctx, `SELECT subject_id FROM tutor_subjects WHERE tutor_profile_id = $1`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list tutor subjects: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tutor subject: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddSubjects добавляет предметы, пропуская уже привязанные
func (r *PgTutorRepository) AddSubjects(ctx context.Context, profileID uuid.UUID, subjectIDs []uuid.UUID) error {
	query := `
		INSERT INTO tutor_subjects (tutor_profile_id, subject_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (tutor_profile_id, subject_id) DO NOTHING
	`

	if _, err := r.ExecAffected(ctx, query, profileID, subjectIDs); err != nil {
		return fmt.Errorf("add tutor subjects: %w", err)
	}
	return nil
}

func (r *PgTutorRepository) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM tutor_subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tutor subject: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tutor subject not found")
	}
	return nil
}
