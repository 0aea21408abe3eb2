package service

import (
	"context"
	"math"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService отзывы студентов о проведённых занятиях
type ReviewService struct {
	store  repository.Store
	hooks  Hooks
	logger *zap.Logger
}

func NewReviewService(store repository.Store, hooks Hooks, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: store, hooks: hooks.withDefaults(), logger: logger}
}

// CreateReview один отзыв на бронирование, только после COMPLETE
func (s *ReviewService) CreateReview(ctx context.Context, p auth.Principal, req CreateReviewRequest) (*model.Review, error) {
	if err := auth.Authorize(p, auth.CapWriteReview); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var review *model.Review
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		booking, err := r.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.ErrBookingNotFound
		}
		if booking.StudentID != p.ID {
			return apperr.ErrNotBookingOwner
		}
		if booking.Status != model.BookingStatusCompleted {
			return apperr.ErrSessionNotCompleted
		}

		existing, err := r.Reviews.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.ErrReviewAlreadyExists
		}

		if !validRating(req.Rating) {
			return apperr.ErrInvalidRating.WithDetail("rating", "Rating must be between 0 and 5")
		}

		review = &model.Review{
			BookingID:      booking.ID,
			StudentID:      p.ID,
			TutorProfileID: booking.TutorProfileID,
			Rating:         req.Rating,
			Comment:        req.Comment,
		}
		return r.Reviews.Create(ctx, review)
	})
	if err != nil {
		return nil, failure(s.logger, "create review", err)
	}

	s.hooks.publish(ctx, s.logger, events.Event{
		Type:           events.ReviewCreated,
		BookingID:      review.BookingID,
		StudentID:      review.StudentID,
		TutorProfileID: review.TutorProfileID,
		Rating:         review.Rating,
		OccurredAt:     time.Now().UTC(),
	})

	s.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", review.BookingID.String()),
		zap.Float64("rating", review.Rating),
	)

	return review, nil
}

func validRating(rating float64) bool {
	return !math.IsNaN(rating) && rating >= model.MinRating && rating <= model.MaxRating
}

// ListTutorReviews отзывы о преподавателе, новые первыми
func (s *ReviewService) ListTutorReviews(ctx context.Context, profileID uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.store.Repos().Reviews.ListByTutor(ctx, profileID)
	if err != nil {
		return nil, failure(s.logger, "list reviews", err)
	}
	return reviews, nil
}

// TutorRating средняя оценка и число отзывов
func (s *ReviewService) TutorRating(ctx context.Context, profileID uuid.UUID) (float64, int, error) {
	reviews, err := s.ListTutorReviews(ctx, profileID)
	if err != nil {
		return 0, 0, err
	}
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(reviews))
	return math.Round(avg*100) / 100, len(reviews), nil
}
