package service

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/timeutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService еженедельные окна доступности преподавателя
type AvailabilityService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAvailabilityService(store repository.Store, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, logger: logger}
}

func validateWindow(day model.DayOfWeek, start, end string) error {
	if !day.Valid() {
		return apperr.ErrInvalidDayOfWeek.WithDetail("dayOfWeek", "Day must be one of SUNDAY..SATURDAY")
	}
	_, _, err := timeutil.ParseRange(start, end)
	return err
}

// Add добавляет окно доступности для профиля текущего преподавателя
func (s *AvailabilityService) Add(ctx context.Context, p auth.Principal, req AvailabilityRequest) (*model.Availability, error) {
	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return nil, err
	}
	if err := validateWindow(req.DayOfWeek, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	var window *model.Availability
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}

		window = &model.Availability{
			TutorProfileID: profile.ID,
			DayOfWeek:      req.DayOfWeek,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
		}
		return r.Availability.Create(ctx, window)
	})
	if err != nil {
		return nil, failure(s.logger, "add availability", err)
	}

	s.logger.Info("Availability added",
		zap.String("availability_id", window.ID.String()),
		zap.String("tutor_profile_id", window.TutorProfileID.String()),
		zap.String("day", string(window.DayOfWeek)),
		zap.String("start", window.StartTime),
		zap.String("end", window.EndTime),
	)

	return window, nil
}

// Update применяет частичное изменение и проверяет окно целиком после слияния
func (s *AvailabilityService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, patch AvailabilityPatch) (*model.Availability, error) {
	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return nil, err
	}

	var window *model.Availability
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		window, err = s.owned(ctx, r, p.ID, id)
		if err != nil {
			return err
		}

		if patch.DayOfWeek != nil {
			window.DayOfWeek = *patch.DayOfWeek
		}
		if patch.StartTime != nil {
			window.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			window.EndTime = *patch.EndTime
		}
		if err := validateWindow(window.DayOfWeek, window.StartTime, window.EndTime); err != nil {
			return err
		}

		return r.Availability.Update(ctx, window)
	})
	if err != nil {
		return nil, failure(s.logger, "update availability", err)
	}

	s.logger.Info("Availability updated",
		zap.String("availability_id", window.ID.String()),
		zap.String("day", string(window.DayOfWeek)),
		zap.String("start", window.StartTime),
		zap.String("end", window.EndTime),
	)

	return window, nil
}

// Delete удаляет окно. Уже созданные слоты остаются.
func (s *AvailabilityService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		if _, err := s.owned(ctx, r, p.ID, id); err != nil {
			return err
		}
		return r.Availability.Delete(ctx, id)
	})
	if err != nil {
		return failure(s.logger, "delete availability", err)
	}

	s.logger.Info("Availability deleted", zap.String("availability_id", id.String()))
	return nil
}

// List окна текущего преподавателя
func (s *AvailabilityService) List(ctx context.Context, p auth.Principal) ([]*model.Availability, error) {
	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return nil, err
	}

	r := s.store.Repos()
	profile, err := tutorProfileOf(ctx, r, p.ID)
	if err != nil {
		return nil, failure(s.logger, "list availability", err)
	}

	windows, err := r.Availability.ListByTutor(ctx, profile.ID)
	if err != nil {
		return nil, failure(s.logger, "list availability", err)
	}
	return windows, nil
}

// owned чужое окно неотличимо от отсутствующего
func (s *AvailabilityService) owned(ctx context.Context, r *repository.Repositories, userID, id uuid.UUID) (*model.Availability, error) {
	profile, err := tutorProfileOf(ctx, r, userID)
	if err != nil {
		return nil, err
	}

	window, err := r.Availability.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if window == nil || window.TutorProfileID != profile.ID {
		return nil, apperr.ErrAvailabilityNotFound
	}
	return window, nil
}
