package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotCache кэш свободных слотов на чтение. Пишущие операции его не читают,
// только сбрасывают после коммита.
//
// Каждый Invalidate увеличивает поколение ключа. GetOpenSlots при промахе
// отдаёт текущее поколение, и SetOpenSlots записывает список только если
// поколение с тех пор не менялось: список, прочитанный до чужого коммита,
// в кэш не попадёт.
type SlotCache interface {
	GetOpenSlots(ctx context.Context, profileID uuid.UUID, date time.Time) (slots []*model.TimeSlot, gen int64, ok bool, err error)
	SetOpenSlots(ctx context.Context, profileID uuid.UUID, date time.Time, gen int64, slots []*model.TimeSlot) error
	Invalidate(ctx context.Context, profileID uuid.UUID, date time.Time) error
}

// MetricsRecorder счётчики исходов операций
type MetricsRecorder interface {
	ObserveBooking(action string, err error)
	ObserveSlot(action string, err error)
}

type noCache struct{}

func (noCache) GetOpenSlots(context.Context, uuid.UUID, time.Time) ([]*model.TimeSlot, int64, bool, error) {
	return nil, 0, false, nil
}

func (noCache) SetOpenSlots(context.Context, uuid.UUID, time.Time, int64, []*model.TimeSlot) error {
	return nil
}

func (noCache) Invalidate(context.Context, uuid.UUID, time.Time) error {
	return nil
}

type noMetrics struct{}

func (noMetrics) ObserveBooking(string, error) {}
func (noMetrics) ObserveSlot(string, error)    {}

// Hooks побочные эффекты после коммита: события, кэш, метрики.
// Любое поле может быть nil.
type Hooks struct {
	Publisher events.Publisher
	Cache     SlotCache
	Metrics   MetricsRecorder
}

func (h Hooks) withDefaults() Hooks {
	if h.Publisher == nil {
		h.Publisher = events.Nop{}
	}
	if h.Cache == nil {
		h.Cache = noCache{}
	}
	if h.Metrics == nil {
		h.Metrics = noMetrics{}
	}
	return h
}

// publish отправляет событие; ошибка доставки не отменяет уже закоммиченную операцию
func (h Hooks) publish(ctx context.Context, logger *zap.Logger, ev events.Event) {
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}

func (h Hooks) invalidate(ctx context.Context, logger *zap.Logger, profileID uuid.UUID, date time.Time) {
	if err := h.Cache.Invalidate(ctx, profileID, date); err != nil {
		logger.Warn("Failed to invalidate slot cache",
			zap.String("tutor_profile_id", profileID.String()),
			zap.Time("date", date),
			zap.Error(err))
	}
}

// failure доменные ошибки возвращает как есть, сбои хранилища логирует
// и оборачивает во внутреннюю ошибку
func failure(logger *zap.Logger, op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		return appErr
	}
	logger.Error("Store failure", zap.String("op", op), zap.Error(err))
	return apperr.Wrap(err, op)
}

// tutorProfileOf профиль преподавателя текущего пользователя
func tutorProfileOf(ctx context.Context, r *repository.Repositories, userID uuid.UUID) (*model.TutorProfile, error) {
	profile, err := r.Tutors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.ErrTutorProfileNotFound
	}
	return profile, nil
}
