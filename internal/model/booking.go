package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"   // Ожидает подтверждения преподавателя
	BookingStatusConfirmed BookingStatus = "CONFIRM"   // Подтверждено
	BookingStatusCompleted BookingStatus = "COMPLETE"  // Занятие проведено
	BookingStatusCancelled BookingStatus = "CANCELLED" // Отменено студентом
)

// ActiveBookingStatuses статусы, при которых слот считается занятым
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted},
}

// CanTransitionTo проверяет допустимость перехода между статусами
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal CANCELLED и COMPLETE не имеют исходящих переходов
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsActive занимает ли бронирование слот
func (s BookingStatus) IsActive() bool {
	for _, st := range ActiveBookingStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Booking struct {
	ID             uuid.UUID     `json:"id"`
	StudentID      uuid.UUID     `json:"student_id"`
	TutorProfileID uuid.UUID     `json:"tutor_profile_id"`
	SubjectID      uuid.UUID     `json:"subject_id"`
	TimeSlotID     uuid.UUID     `json:"time_slot_id"`
	Status         BookingStatus `json:"status"`
	BookingPrice   float64       `json:"booking_price"` // фиксируется при создании
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Дополнительные поля для уведомлений (не из БД)
	Slot *TimeSlot `json:"slot,omitempty"`
}
