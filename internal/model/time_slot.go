package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot конкретный интервал на дату, который можно забронировать
type TimeSlot struct {
	ID             uuid.UUID `json:"id"`
	TutorProfileID uuid.UUID `json:"tutor_profile_id"`
	Date           time.Time `json:"date"`       // полночь UTC
	StartTime      string    `json:"start_time"` // HH:mm
	EndTime        string    `json:"end_time"`   // HH:mm
	IsBooked       bool      `json:"is_booked"`  // меняется только движком бронирований
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DateString возвращает дату слота в формате YYYY-MM-DD
func (s *TimeSlot) DateString() string {
	return s.Date.Format(DateLayout)
}

const DateLayout = "2006-01-02"
