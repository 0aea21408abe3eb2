package model

import (
	"time"

	"github.com/google/uuid"
)

// TutorProfile профиль преподавателя, к которому привязаны окна доступности, слоты и бронирования
type TutorProfile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	HourlyRate float64   `json:"hourly_rate"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TutorSubject связь преподавателя с предметом, который он ведёт
type TutorSubject struct {
	ID             uuid.UUID `json:"id"`
	TutorProfileID uuid.UUID `json:"tutor_profile_id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	CreatedAt      time.Time `json:"created_at"`
}
