package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/timeutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotService конкретные слоты преподавателя на календарные даты
type SlotService struct {
	store  repository.Store
	hooks  Hooks
	logger *zap.Logger
}

func NewSlotService(store repository.Store, hooks Hooks, logger *zap.Logger) *SlotService {
	return &SlotService{store: store, hooks: hooks.withDefaults(), logger: logger}
}

// checkPlacement слот должен целиком лежать в одном из окон доступности
// своего дня недели и не пересекаться с другими слотами этой даты
func checkPlacement(ctx context.Context, r *repository.Repositories, profileID uuid.UUID, date time.Time, start, end int, exclude uuid.UUID) error {
	windows, err := r.Availability.ListByTutorAndDay(ctx, profileID, timeutil.WeekdayOf(date))
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return apperr.ErrNoAvailability.WithDetail("date", "Tutor has no availability for "+string(timeutil.WeekdayOf(date)))
	}

	fits := false
	for _, w := range windows {
		ws, we, err := timeutil.ParseRange(w.StartTime, w.EndTime)
		if err != nil {
			continue
		}
		if timeutil.Within(ws, we, start, end) {
			fits = true
			break
		}
	}
	if !fits {
		return apperr.ErrOutsideAvailability.WithDetail("time", "Time slot must be within the availability time")
	}

	existing, err := r.Slots.ListByTutorAndDate(ctx, profileID, date)
	if err != nil {
		return err
	}
	for _, slot := range existing {
		if slot.ID == exclude {
			continue
		}
		es, ee, err := timeutil.ParseRange(slot.StartTime, slot.EndTime)
		if err != nil {
			continue
		}
		if timeutil.Overlaps(start, end, es, ee) {
			return apperr.ErrSlotOverlap.WithDetail("time",
				"Overlaps with slot "+slot.StartTime+"-"+slot.EndTime)
		}
	}
	return nil
}

// CreateSlot создаёт свободный слот в пределах доступности преподавателя
func (s *SlotService) CreateSlot(ctx context.Context, p auth.Principal, req SlotRequest) (slot *model.TimeSlot, err error) {
	defer func() { s.hooks.Metrics.ObserveSlot("create", err) }()

	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return nil, err
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, end, err := timeutil.ParseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}
		// слоты одного преподавателя создаются по очереди
		if err := r.Tutors.LockByID(ctx, profile.ID); err != nil {
			return err
		}
		if err := checkPlacement(ctx, r, profile.ID, date, start, end, uuid.Nil); err != nil {
			return err
		}

		slot = &model.TimeSlot{
			TutorProfileID: profile.ID,
			Date:           date,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
		}
		return r.Slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, failure(s.logger, "create slot", err)
	}

	s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, slot.Date)

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("tutor_profile_id", slot.TutorProfileID.String()),
		zap.String("date", slot.DateString()),
		zap.String("start", slot.StartTime),
		zap.String("end", slot.EndTime),
	)

	return slot, nil
}

// UpdateSlot повторяет проверки создания для слота после слияния с patch,
// сам слот в проверке пересечений не участвует
func (s *SlotService) UpdateSlot(ctx context.Context, p auth.Principal, id uuid.UUID, patch SlotPatch) (slot *model.TimeSlot, err error) {
	defer func() { s.hooks.Metrics.ObserveSlot("update", err) }()

	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return nil, err
	}

	var oldDate time.Time
	err = s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}
		if err := r.Tutors.LockByID(ctx, profile.ID); err != nil {
			return err
		}

		slot, err = r.Slots.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if slot == nil || slot.TutorProfileID != profile.ID {
			return apperr.ErrSlotNotFound
		}
		if slot.IsBooked {
			return apperr.ErrSlotBooked.WithDetail("timeSlotId", "Booked slot cannot be moved")
		}
		oldDate = slot.Date

		if patch.Date != nil {
			date, err := timeutil.ParseDate(*patch.Date)
			if err != nil {
				return err
			}
			slot.Date = date
		}
		if patch.StartTime != nil {
			slot.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			slot.EndTime = *patch.EndTime
		}

		start, end, err := timeutil.ParseRange(slot.StartTime, slot.EndTime)
		if err != nil {
			return err
		}
		if err := checkPlacement(ctx, r, profile.ID, slot.Date, start, end, slot.ID); err != nil {
			return err
		}

		return r.Slots.Update(ctx, slot)
	})
	if err != nil {
		return nil, failure(s.logger, "update slot", err)
	}

	s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, oldDate)
	if !oldDate.Equal(slot.Date) {
		s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, slot.Date)
	}

	s.logger.Info("Slot updated",
		zap.String("slot_id", slot.ID.String()),
		zap.String("date", slot.DateString()),
		zap.String("start", slot.StartTime),
		zap.String("end", slot.EndTime),
	)

	return slot, nil
}

// DeleteSlot удаляет свободный слот
func (s *SlotService) DeleteSlot(ctx context.Context, p auth.Principal, id uuid.UUID) (err error) {
	defer func() { s.hooks.Metrics.ObserveSlot("delete", err) }()

	if err := auth.Authorize(p, auth.CapManageSchedule); err != nil {
		return err
	}

	var slot *model.TimeSlot
	err = s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}

		slot, err = r.Slots.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if slot == nil || slot.TutorProfileID != profile.ID {
			return apperr.ErrSlotNotFound
		}
		if slot.IsBooked {
			return apperr.ErrSlotBooked.WithDetail("timeSlotId", "Booked slot cannot be deleted")
		}

		return r.Slots.Delete(ctx, id)
	})
	if err != nil {
		return failure(s.logger, "delete slot", err)
	}

	s.hooks.invalidate(ctx, s.logger, slot.TutorProfileID, slot.Date)
	s.logger.Info("Slot deleted", zap.String("slot_id", id.String()))

	return nil
}

// ListSlots все слоты преподавателя на дату
func (s *SlotService) ListSlots(ctx context.Context, profileID uuid.UUID, date string) ([]*model.TimeSlot, error) {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.Repos().Slots.ListByTutorAndDate(ctx, profileID, day)
	if err != nil {
		return nil, failure(s.logger, "list slots", err)
	}
	return slots, nil
}

// ListOpenSlots свободные слоты на дату. Результат кэшируется до ближайшего
// изменения слотов или бронирований этой даты.
func (s *SlotService) ListOpenSlots(ctx context.Context, profileID uuid.UUID, date string) ([]*model.TimeSlot, error) {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	cached, gen, ok, err := s.hooks.Cache.GetOpenSlots(ctx, profileID, day)
	if err != nil {
		s.logger.Warn("Slot cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	slots, err := s.store.Repos().Slots.ListByTutorAndDate(ctx, profileID, day)
	if err != nil {
		return nil, failure(s.logger, "list open slots", err)
	}

	open := make([]*model.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsBooked {
			open = append(open, slot)
		}
	}

	// gen прочитан до похода в хранилище
	if err := s.hooks.Cache.SetOpenSlots(ctx, profileID, day, gen, open); err != nil {
		s.logger.Warn("Slot cache write failed", zap.Error(err))
	}

	return open, nil
}

// GenerateFromAvailability нарезает окна доступности на слоты фиксированной
// длины на weeks недель вперёд начиная с from. Слоты, пересекающиеся с уже
// существующими, пропускаются. Возвращает число созданных слотов.
func (s *SlotService) GenerateFromAvailability(ctx context.Context, profileID uuid.UUID, from time.Time, weeks, slotMinutes int) (int, error) {
	if weeks <= 0 || slotMinutes <= 0 {
		return 0, apperr.ErrInvalidInput.WithDetail("slotMinutes", "weeks and slot length must be positive")
	}

	start := timeutil.TruncateDate(from)
	created := 0

	for day := 0; day < weeks*7; day++ {
		date := start.AddDate(0, 0, day)
		var made []*model.TimeSlot

		err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
			made = made[:0]
			if err := r.Tutors.LockByID(ctx, profileID); err != nil {
				return err
			}

			windows, err := r.Availability.ListByTutorAndDay(ctx, profileID, timeutil.WeekdayOf(date))
			if err != nil {
				return err
			}

			for _, w := range windows {
				ws, we, err := timeutil.ParseRange(w.StartTime, w.EndTime)
				if err != nil {
					continue
				}
				for m := ws; m+slotMinutes <= we; m += slotMinutes {
					err := checkPlacement(ctx, r, profileID, date, m, m+slotMinutes, uuid.Nil)
					if apperr.IsCode(err, apperr.CodeSlotOverlap) {
						continue
					}
					if err != nil {
						return err
					}

					slot := &model.TimeSlot{
						TutorProfileID: profileID,
						Date:           date,
						StartTime:      timeutil.FormatMinutes(m),
						EndTime:        timeutil.FormatMinutes(m + slotMinutes),
					}
					if err := r.Slots.Create(ctx, slot); err != nil {
						return err
					}
					made = append(made, slot)
				}
			}
			return nil
		})
		if err != nil {
			return created, failure(s.logger, "generate slots", err)
		}

		if len(made) > 0 {
			created += len(made)
			s.hooks.invalidate(ctx, s.logger, profileID, date)
		}
	}

	s.logger.Info("Slots generated from availability",
		zap.String("tutor_profile_id", profileID.String()),
		zap.Time("from", start),
		zap.Int("weeks", weeks),
		zap.Int("created", created),
	)

	return created, nil
}
