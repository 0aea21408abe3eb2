// Package events события жизненного цикла бронирований для внешних подписчиков.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingCancelled Type = "booking.cancelled"
	BookingConfirmed Type = "booking.confirmed"
	BookingCompleted Type = "booking.completed"
	ReviewCreated    Type = "review.created"
)

type Event struct {
	Type           Type      `json:"event_type"`
	BookingID      uuid.UUID `json:"booking_id"`
	StudentID      uuid.UUID `json:"student_id"`
	TutorProfileID uuid.UUID `json:"tutor_profile_id"`
	TimeSlotID     uuid.UUID `json:"time_slot_id"`
	Status         string    `json:"status,omitempty"`
	BookingPrice   float64   `json:"booking_price,omitempty"`
	Rating         float64   `json:"rating,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher вызывается после коммита транзакции
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop ничего не делает
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi рассылает событие всем получателям и собирает ошибки
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
