package service

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/auth"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService список и блокировка пользователей, продвижение преподавателей
type AdminService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAdminService(store repository.Store, logger *zap.Logger) *AdminService {
	return &AdminService{store: store, logger: logger}
}

// ListUsers все пользователи в порядке регистрации
func (s *AdminService) ListUsers(ctx context.Context, p auth.Principal) ([]*model.User, error) {
	if err := auth.Authorize(p, auth.CapManageUsers); err != nil {
		return nil, err
	}

	users, err := s.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, failure(s.logger, "list users", err)
	}
	return users, nil
}

// UpdateUserStatus блокирует или разблокирует пользователя
func (s *AdminService) UpdateUserStatus(ctx context.Context, p auth.Principal, req UpdateUserStatusRequest) (*model.User, error) {
	if err := auth.Authorize(p, auth.CapManageUsers); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.ErrUserNotFound
		}
		if user.Status == req.Status {
			return apperr.ErrStatusUnchanged.WithDetail("status", "User is already "+string(req.Status))
		}

		if err := r.Users.UpdateStatus(ctx, user.ID, req.Status); err != nil {
			return err
		}
		user.Status = req.Status
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, "update user status", err)
	}

	s.logger.Info("User status updated",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)),
		zap.String("admin_id", p.ID.String()),
	)

	return user, nil
}

// FeatureTutor включает или снимает отметку рекомендуемого преподавателя
func (s *AdminService) FeatureTutor(ctx context.Context, p auth.Principal, profileID uuid.UUID, featured bool) (*model.TutorProfile, error) {
	if err := auth.Authorize(p, auth.CapManageUsers); err != nil {
		return nil, err
	}

	var profile *model.TutorProfile
	err := s.store.InTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		profile, err = r.Tutors.GetByID(ctx, profileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return apperr.ErrTutorProfileNotFound
		}

		if err := r.Tutors.SetFeatured(ctx, profileID, featured); err != nil {
			return err
		}
		profile.IsFeatured = featured
		return nil
	})
	if err != nil {
		return nil, failure(s.logger, "feature tutor", err)
	}

	s.logger.Info("Tutor featured flag updated",
		zap.String("tutor_profile_id", profileID.String()),
		zap.Bool("featured", featured),
	)

	return profile, nil
}
