package service

import (
	"context"
	"slices"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TutorService профиль преподавателя: ставка, предметы и образование
type TutorService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewTutorService(store repository.Store, logger *zap.Logger) *TutorService {
	return &TutorService{store: store, logger: logger}
}

// CreateProfile создаёт профиль преподавателя для текущего пользователя
func (s *TutorService) CreateProfile(ctx context.Context, p auth.Principal, hourlyRate float64) (*model.TutorProfile, error) {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if !validRate(hourlyRate) {
		return nil, apperr.ErrInvalidHourlyRate.WithDetail("hourlyRate", "Hourly rate must be greater than zero")
	}

	profile := &model.TutorProfile{UserID: p.ID, HourlyRate: hourlyRate}
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		existing, err := r.Tutors.GetByUserID(ctx, p.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.ErrTutorProfileExists
		}
		return r.Tutors.Create(ctx, profile)
	})
	if err != nil {
		return nil, failure(s.logger, "create tutor profile", err)
	}

	s.logger.Info("Tutor profile created",
		zap.String("tutor_profile_id", profile.ID.String()),
		zap.String("user_id", p.ID.String()),
		zap.Float64("hourly_rate", hourlyRate),
	)

	return profile, nil
}

// GetProfile профиль по ID
func (s *TutorService) GetProfile(ctx context.Context, profileID uuid.UUID) (*model.TutorProfile, error) {
	profile, err := s.store.Repos().Tutors.GetByID(ctx, profileID)
	if err != nil {
		return nil, failure(s.logger, "get tutor profile", err)
	}
	if profile == nil {
		return nil, apperr.ErrTutorProfileNotFound
	}
	return profile, nil
}

// UpdateHourlyRate меняет ставку. Цены существующих бронирований не пересчитываются.
func (s *TutorService) UpdateHourlyRate(ctx context.Context, p auth.Principal, hourlyRate float64) (*model.TutorProfile, error) {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if !validRate(hourlyRate) {
		return nil, apperr.ErrInvalidHourlyRate.WithDetail("hourlyRate", "Hourly rate must be greater than zero")
	}

	var profile *model.TutorProfile
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		profile, err = tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}
		if err := r.Tutors.UpdateHourlyRate(ctx, profile.ID, hourlyRate); err != nil {
			return err
		}
		profile.HourlyRate = hourlyRate
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, "update hourly rate", err)
	}

	s.logger.Info("Hourly rate updated",
		zap.String("tutor_profile_id", profile.ID.String()),
		zap.Float64("hourly_rate", hourlyRate),
	)

	return profile, nil
}

// AddSubjects добавляет предметы, которых ещё нет в профиле.
// Все ID должны существовать; если новых нет совсем, это конфликт.
func (s *TutorService) AddSubjects(ctx context.Context, p auth.Principal, req AddSubjectsRequest) ([]uuid.UUID, error) {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	requested := slices.Clone(req.SubjectIDs)
	slices.SortFunc(requested, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	requested = slices.Compact(requested)

	var added []uuid.UUID
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}

		known, err := r.Subjects.ExistingIDs(ctx, requested)
		if err != nil {
			return err
		}
		if len(known) != len(requested) {
			e := apperr.ErrInvalidSubjectID
			for _, id := range requested {
				if !slices.Contains(known, id) {
					e = e.WithDetail("subjectIds", "Unknown subject "+id.String())
				}
			}
			return e
		}

		current, err := r.Tutors.ListSubjectIDs(ctx, profile.ID)
		if err != nil {
			return err
		}
		for _, id := range requested {
			if !slices.Contains(current, id) {
				added = append(added, id)
			}
		}
		if len(added) == 0 {
			return apperr.ErrDuplicateSubject
		}

		return r.Tutors.AddSubjects(ctx, profile.ID, added)
	})
	if err != nil {
		return nil, failure(s.logger, "add tutor subjects", err)
	}

	s.logger.Info("Tutor subjects added",
		zap.String("user_id", p.ID.String()),
		zap.Int("added", len(added)),
		zap.Int("skipped", len(requested)-len(added)),
	)

	return added, nil
}

// RemoveSubject убирает предмет из профиля, если по нему нет подтверждённых занятий
func (s *TutorService) RemoveSubject(ctx context.Context, p auth.Principal, subjectID uuid.UUID) error {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}

		assigned, err := r.Tutors.GetSubject(ctx, profile.ID, subjectID)
		if err != nil {
			return err
		}
		if assigned == nil {
			return apperr.ErrSubjectNotAssigned
		}

		inUse, err := r.Bookings.ExistsWithStatus(ctx, profile.ID, subjectID, model.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		if inUse {
			return apperr.ErrSubjectInUse.WithDetail("subjectId", "Subject has confirmed bookings")
		}

		return r.Tutors.DeleteSubject(ctx, assigned.ID)
	})
	if err != nil {
		return failure(s.logger, "remove tutor subject", err)
	}

	s.logger.Info("Tutor subject removed",
		zap.String("user_id", p.ID.String()),
		zap.String("subject_id", subjectID.String()),
	)

	return nil
}

// ListSubjects предметы профиля
func (s *TutorService) ListSubjects(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.store.Repos().Tutors.ListSubjectIDs(ctx, profileID)
	if err != nil {
		return nil, failure(s.logger, "list tutor subjects", err)
	}
	return ids, nil
}

// AddEducation добавляет запись об образовании в профиль текущего преподавателя
func (s *TutorService) AddEducation(ctx context.Context, p auth.Principal, req EducationRequest) (*model.Education, error) {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	edu := &model.Education{
		Institute:    req.Institute,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartYear:    req.StartYear,
		EndYear:      req.EndYear,
		IsCurrent:    req.IsCurrent,
	}
	if !edu.YearsValid() {
		return nil, apperr.ErrInvalidEducation.WithDetail("endYear", "End year is before start year")
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		profile, err := tutorProfileOf(ctx, r, p.ID)
		if err != nil {
			return err
		}
		edu.TutorProfileID = profile.ID
		return r.Education.Create(ctx, edu)
	})
	if err != nil {
		return nil, failure(s.logger, "add education", err)
	}

	s.logger.Info("Education added",
		zap.String("education_id", edu.ID.String()),
		zap.String("tutor_profile_id", edu.TutorProfileID.String()),
	)

	return edu, nil
}

// UpdateEducation меняет переданные поля. Годы проверяются после слияния
// с сохранённой записью.
func (s *TutorService) UpdateEducation(ctx context.Context, p auth.Principal, educationID uuid.UUID, patch EducationPatch) (*model.Education, error) {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if err := validateRequest(&patch); err != nil {
		return nil, err
	}

	var edu *model.Education
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		edu, err = ownEducation(ctx, r, p.ID, educationID)
		if err != nil {
			return err
		}

		if patch.Institute != nil {
			edu.Institute = *patch.Institute
		}
		if patch.Degree != nil {
			edu.Degree = *patch.Degree
		}
		if patch.FieldOfStudy != nil {
			edu.FieldOfStudy = *patch.FieldOfStudy
		}
		if patch.StartYear != nil {
			edu.StartYear = *patch.StartYear
		}
		if patch.EndYear != nil {
			edu.EndYear = patch.EndYear
		}
		if patch.IsCurrent != nil {
			edu.IsCurrent = *patch.IsCurrent
		}
		if !edu.YearsValid() {
			return apperr.ErrInvalidEducation.WithDetail("endYear", "End year is before start year")
		}

		return r.Education.Update(ctx, edu)
	})
	if err != nil {
		return nil, failure(s.logger, "update education", err)
	}

	s.logger.Info("Education updated", zap.String("education_id", edu.ID.String()))

	return edu, nil
}

// DeleteEducation удаляет запись из профиля текущего преподавателя
func (s *TutorService) DeleteEducation(ctx context.Context, p auth.Principal, educationID uuid.UUID) error {
	if err := auth.Authorize(p, auth.CapManageProfile); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		if _, err := ownEducation(ctx, r, p.ID, educationID); err != nil {
			return err
		}
		return r.Education.Delete(ctx, educationID)
	})
	if err != nil {
		return failure(s.logger, "delete education", err)
	}

	s.logger.Info("Education deleted", zap.String("education_id", educationID.String()))

	return nil
}

// ListEducation образование преподавателя, сначала последнее
func (s *TutorService) ListEducation(ctx context.Context, profileID uuid.UUID) ([]*model.Education, error) {
	list, err := s.store.Repos().Education.ListByTutor(ctx, profileID)
	if err != nil {
		return nil, failure(s.logger, "list education", err)
	}
	return list, nil
}

// ownEducation чужая и несуществующая запись неразличимы
func ownEducation(ctx context.Context, r *repository.Repositories, userID, educationID uuid.UUID) (*model.Education, error) {
	profile, err := tutorProfileOf(ctx, r, userID)
	if err != nil {
		return nil, err
	}

	edu, err := r.Education.GetByID(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if edu == nil || edu.TutorProfileID != profile.ID {
		return nil, apperr.ErrEducationNotFound
	}
	return edu, nil
}
