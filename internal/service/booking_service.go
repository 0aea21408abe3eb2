package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService жизненный цикл бронирования:
// PENDING -> CONFIRM -> COMPLETE, PENDING -> CANCELLED
type BookingService struct {
	store   repository.Store
	pricing *PricingCalculator
	hooks   Hooks
	logger  *zap.Logger
}

func NewBookingService(store repository.Store, pricing *PricingCalculator, hooks Hooks, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:   store,
		pricing: pricing,
		hooks:   hooks.withDefaults(),
		logger:  logger,
	}
}

// CreateBooking бронирует свободный слот. Все шаги выполняются в одной
// транзакции; из конкурирующих запросов на один слот успешен только один.
func (s *BookingService) CreateBooking(ctx context.Context, p auth.Principal, req CreateBookingRequest) (booking *model.Booking, err error) {
	defer func() { s.hooks.Metrics.ObserveBooking("create", err) }()

	if err := auth.Authorize(p, auth.CapBookSlot); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var slot *model.TimeSlot
	err = s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		// Получаем слот с блокировкой строки
		slot, err = r.Slots.GetByIDForUpdate(ctx, req.TimeSlotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return apperr.ErrSlotNotFound
		}

		profile, err := r.Tutors.GetByID(ctx, slot.TutorProfileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return apperr.ErrTutorProfileNotFound
		}

		if slot.IsBooked {
			return apperr.ErrSlotAlreadyBooked
		}

		teaches, err := r.Tutors.HasSubject(ctx, profile.ID, req.SubjectID)
		if err != nil {
			return err
		}
		if !teaches {
			return apperr.ErrSubjectNotTaught.WithDetail("subjectId", "Tutor does not teach this subject")
		}

		// Флаг is_booked может отстать от таблицы бронирований
		active, err := r.Bookings.FindActiveBySlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.ErrSlotAlreadyBooked
		}

		price, err := s.pricing.Price(slot.StartTime, slot.EndTime, profile.HourlyRate)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			StudentID:      p.ID,
			TutorProfileID: profile.ID,
			SubjectID:      req.SubjectID,
			TimeSlotID:     slot.ID,
			Status:         model.BookingStatusPending,
			BookingPrice:   price,
		}
		if err := r.Bookings.Create(ctx, booking); err != nil {
			return err
		}

		return r.Slots.SetBooked(ctx, slot.ID, true)
	})
	if err != nil {
		return nil, failure(s.logger, "create booking", err)
	}

	slot.IsBooked = true
	booking.Slot = slot

	s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, slot.Date)
	s.hooks.publish(ctx, s.logger, bookingEvent(events.BookingCreated, booking))

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("student_id", p.ID.String()),
		zap.String("slot_id", slot.ID.String()),
		zap.Float64("price", booking.BookingPrice),
	)

	return booking, nil
}

// CancelBooking отмена доступна студенту только до подтверждения
func (s *BookingService) CancelBooking(ctx context.Context, p auth.Principal, bookingID uuid.UUID) (booking *model.Booking, err error) {
	defer func() { s.hooks.Metrics.ObserveBooking("cancel", err) }()

	if err := auth.Authorize(p, auth.CapCancelBooking); err != nil {
		return nil, err
	}

	var slot *model.TimeSlot
	err = s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		booking, err = r.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.ErrBookingNotFound
		}
		if booking.StudentID != p.ID {
			return apperr.ErrNotBookingOwner
		}

		if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
			return cancelRefusal(booking.Status)
		}

		if err := r.Bookings.UpdateStatus(ctx, booking.ID, model.BookingStatusCancelled); err != nil {
			return err
		}
		booking.Status = model.BookingStatusCancelled

		// Освобождаем слот
		slot, err = r.Slots.GetByIDForUpdate(ctx, booking.TimeSlotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return apperr.ErrSlotNotFound
		}
		slot.IsBooked = false
		return r.Slots.SetBooked(ctx, slot.ID, false)
	})
	if err != nil {
		return nil, failure(s.logger, "cancel booking", err)
	}

	booking.Slot = slot

	s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, slot.Date)
	s.hooks.publish(ctx, s.logger, bookingEvent(events.BookingCancelled, booking))

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("student_id", p.ID.String()),
	)

	return booking, nil
}

func cancelRefusal(status model.BookingStatus) error {
	switch status {
	case model.BookingStatusCancelled:
		return apperr.ErrAlreadyCancelled
	case model.BookingStatusConfirmed:
		return apperr.ErrBookingConfirmed.WithDetail("status", "Booking has been confirmed by the tutor")
	case model.BookingStatusCompleted:
		return apperr.ErrCannotCancelComplete
	default:
		return apperr.ErrInvalidStatus
	}
}

// ConfirmBooking преподаватель подтверждает ожидающее бронирование
func (s *BookingService) ConfirmBooking(ctx context.Context, p auth.Principal, bookingID uuid.UUID) (booking *model.Booking, err error) {
	defer func() { s.hooks.Metrics.ObserveBooking("confirm", err) }()

	booking, err = s.advance(ctx, p, bookingID, model.BookingStatusPending, model.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.hooks.publish(ctx, s.logger, bookingEvent(events.BookingConfirmed, booking))
	s.logger.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("tutor_user_id", p.ID.String()),
	)

	return booking, nil
}

// CompleteBooking отмечает подтверждённое занятие проведённым
func (s *BookingService) CompleteBooking(ctx context.Context, p auth.Principal, bookingID uuid.UUID) (booking *model.Booking, err error) {
	defer func() { s.hooks.Metrics.ObserveBooking("complete", err) }()

	booking, err = s.advance(ctx, p, bookingID, model.BookingStatusConfirmed, model.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.hooks.publish(ctx, s.logger, bookingEvent(events.BookingCompleted, booking))
	s.logger.Info("Booking completed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("tutor_user_id", p.ID.String()),
	)

	return booking, nil
}

// advance переход из from в to от имени преподавателя. Порядок проверок:
// существование, статус, владелец профиля, блокировка аккаунтов.
func (s *BookingService) advance(ctx context.Context, p auth.Principal, bookingID uuid.UUID, from, to model.BookingStatus) (*model.Booking, error) {
	if err := auth.Authorize(p, auth.CapManageBookings); err != nil {
		return nil, err
	}

	var booking *model.Booking
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		booking, err = r.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.ErrBookingNotFound
		}

		if booking.Status != from || !from.CanTransitionTo(to) {
			return apperr.ErrInvalidStatus.WithDetail("status",
				"Booking is "+string(booking.Status)+", expected "+string(from))
		}

		profile, err := r.Tutors.GetByID(ctx, booking.TutorProfileID)
		if err != nil {
			return err
		}
		if profile == nil || profile.UserID != p.ID {
			return apperr.ErrNotAuthorized
		}

		tutor, err := r.Users.GetByID(ctx, profile.UserID)
		if err != nil {
			return err
		}
		if tutor == nil || tutor.IsBanned() {
			return apperr.ErrAccountBanned.WithDetail("tutor", "Tutor account is banned")
		}

		student, err := r.Users.GetByID(ctx, booking.StudentID)
		if err != nil {
			return err
		}
		if student == nil || student.IsBanned() {
			return apperr.ErrAccountBanned.WithDetail("student", "Student account is banned")
		}

		if err := r.Bookings.UpdateStatus(ctx, booking.ID, to); err != nil {
			return err
		}
		booking.Status = to
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, "update booking status", err)
	}

	return booking, nil
}

// GetBooking бронирование со слотом; видно только студенту и преподавателю
func (s *BookingService) GetBooking(ctx context.Context, p auth.Principal, bookingID uuid.UUID) (*model.Booking, error) {
	if err := auth.Authorize(p, auth.CapViewOwnBookings); err != nil {
		return nil, err
	}

	r := s.store.Repos()
	booking, err := r.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, failure(s.logger, "get booking", err)
	}
	if booking == nil {
		return nil, apperr.ErrBookingNotFound
	}

	if booking.StudentID != p.ID {
		profile, err := r.Tutors.GetByID(ctx, booking.TutorProfileID)
		if err != nil {
			return nil, failure(s.logger, "get booking", err)
		}
		if profile == nil || profile.UserID != p.ID {
			return nil, apperr.ErrBookingNotFound
		}
	}

	booking.Slot, err = r.Slots.GetByID(ctx, booking.TimeSlotID)
	if err != nil {
		return nil, failure(s.logger, "get booking slot", err)
	}

	return booking, nil
}

// ListStudentBookings бронирования текущего студента, новые первыми
func (s *BookingService) ListStudentBookings(ctx context.Context, p auth.Principal) ([]*model.Booking, error) {
	if err := auth.Authorize(p, auth.CapBookSlot); err != nil {
		return nil, err
	}

	bookings, err := s.store.Repos().Bookings.ListByStudent(ctx, p.ID)
	if err != nil {
		return nil, failure(s.logger, "list student bookings", err)
	}
	return bookings, nil
}

// ListTutorBookings бронирования слотов текущего преподавателя
func (s *BookingService) ListTutorBookings(ctx context.Context, p auth.Principal) ([]*model.Booking, error) {
	if err := auth.Authorize(p, auth.CapManageBookings); err != nil {
		return nil, err
	}

	r := s.store.Repos()
	profile, err := tutorProfileOf(ctx, r, p.ID)
	if err != nil {
		return nil, failure(s.logger, "list tutor bookings", err)
	}

	bookings, err := r.Bookings.ListByTutor(ctx, profile.ID)
	if err != nil {
		return nil, failure(s.logger, "list tutor bookings", err)
	}
	return bookings, nil
}

func bookingEvent(t events.Type, b *model.Booking) events.Event {
	return events.Event{
		Type:           t,
		BookingID:      b.ID,
		StudentID:      b.StudentID,
		TutorProfileID: b.TutorProfileID,
		TimeSlotID:     b.TimeSlotID,
		Status:         string(b.Status),
		BookingPrice:   b.BookingPrice,
		OccurredAt:     time.Now().UTC(),
	}
}
