package service

import (
	"testing"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	f := newFixture(t)
	b := f.bookingIn(t, model.BookingStatusCompleted)

	comment := "Clear explanations"
	review, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: 4.5, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, f.profile.ID, review.TutorProfileID)
	assert.Equal(t, 4.5, review.Rating)
	assert.Contains(t, f.pub.types(), events.ReviewCreated)

	_, err = f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: 3})
	assert.True(t, apperr.IsCode(err, apperr.CodeReviewAlreadyExists))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateReview_Rating(t *testing.T) {
	f := newFixture(t)

	for _, rating := range []float64{5.5, -0.5, 100} {
		b := f.bookingIn(t, model.BookingStatusCompleted)
		_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: rating})
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidRating), "rating %v", rating)
	}

	for _, rating := range []float64{0, 5} {
		b := f.bookingIn(t, model.BookingStatusCompleted)
		_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: rating})
		assert.NoError(t, err, "rating %v", rating)
	}
}

func TestCreateReview_Preconditions(t *testing.T) {
	f := newFixture(t)

	for _, status := range []model.BookingStatus{
		model.BookingStatusPending,
		model.BookingStatusConfirmed,
		model.BookingStatusCancelled,
	} {
		b := f.bookingIn(t, status)
		_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: 5})
		assert.True(t, apperr.IsCode(err, apperr.CodeSessionNotCompleted), "status %s", status)
	}

	_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: uuid.New(), Rating: 5})
	assert.True(t, apperr.IsCode(err, apperr.CodeBookingNotFound))

	done := f.bookingIn(t, model.BookingStatusCompleted)
	_, err = f.reviews.CreateReview(f.ctx, f.user(t, model.RoleStudent), CreateReviewRequest{BookingID: done.ID, Rating: 5})
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = f.reviews.CreateReview(f.ctx, f.tutor, CreateReviewRequest{BookingID: done.ID, Rating: 5})
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestCreateReview_ChecksBeforeRating(t *testing.T) {
	f := newFixture(t)
	b := f.bookingIn(t, model.BookingStatusPending)

	// статус проверяется раньше оценки
	_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: 5.5})
	assert.True(t, apperr.IsCode(err, apperr.CodeSessionNotCompleted))
}

func TestTutorRating(t *testing.T) {
	f := newFixture(t)

	avg, count, err := f.reviews.TutorRating(f.ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	for _, rating := range []float64{5, 4, 4} {
		b := f.bookingIn(t, model.BookingStatusCompleted)
		_, err := f.reviews.CreateReview(f.ctx, f.student, CreateReviewRequest{BookingID: b.ID, Rating: rating})
		require.NoError(t, err)
	}

	avg, count, err = f.reviews.TutorRating(f.ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 4.33, avg)
}
