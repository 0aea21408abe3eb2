package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

type Review struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"booking_id"`
	StudentID      uuid.UUID `json:"student_id"`
	TutorProfileID uuid.UUID `json:"tutor_profile_id"`
	Rating         float64   `json:"rating"`
	Comment        *string   `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}
