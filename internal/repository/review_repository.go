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

const reviewBookingConstraint = "reviews_booking_uq"

type PgReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(db base.Querier) *PgReviewRepository {
	return &PgReviewRepository{Repository: base.NewRepository(db)}
}

const reviewColumns = `id, booking_id, student_id, tutor_profile_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	review := &model.Review{}
	err := row.Scan(
		&review.ID,
		&review.BookingID,
		&review.StudentID,
		&review.TutorProfileID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	return review, err
}

func (r *PgReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (booking_id, student_id, tutor_profile_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query,
		review.BookingID,
		review.StudentID,
		review.TutorProfileID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err, reviewBookingConstraint) {
			return apperr.ErrReviewAlreadyExists
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *PgReviewRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = $1`

	review, err := scanReview(r.QueryRow(ctx, query, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by booking: %w", err)
	}

	return review, nil
}

func (r *PgReviewRepository) ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE tutor_profile_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by tutor: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
