package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/google/uuid"
)

// PgSubjectRepository только то, что нужно движку от справочника предметов
type PgSubjectRepository struct {
	*base.Repository
}

func NewSubjectRepository(db base.Querier) *PgSubjectRepository {
	return &PgSubjectRepository{Repository: base.NewRepository(db)}
}

func (r *PgSubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	query := `
		INSERT INTO subjects (name, category_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, subject.Name, subject.CategoryID).Scan(&subject.ID, &subject.CreatedAt)
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	return nil
}

// ExistingIDs возвращает подмножество ids, существующее в справочнике
func (r *PgSubjectRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.Query(ctx, `SELECT id FROM subjects WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get subjects by ids: %w", err)
	}
	defer rows.Close()

	var found []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subject id: %w", err)
		}
		found = append(found, id)
	}

	return found, rows.Err()
}
