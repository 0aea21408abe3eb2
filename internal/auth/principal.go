// Package auth централизует проверку ролей и статуса аккаунта.
// Принципал приходит от внешнего сервиса аутентификации уже проверенным.
package auth

import (
	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
)

type Principal struct {
	ID     uuid.UUID
	Role   model.Role
	Status model.UserStatus
}

type Capability string

const (
	CapBookSlot        Capability = "book_slot"
	CapCancelBooking   Capability = "cancel_booking"
	CapWriteReview     Capability = "write_review"
	CapManageProfile   Capability = "manage_profile"
	CapManageSchedule  Capability = "manage_schedule"
	CapManageBookings  Capability = "manage_bookings"
	CapManageUsers     Capability = "manage_users"
	CapViewOwnBookings Capability = "view_own_bookings"
)

var capabilities = map[model.Role]map[Capability]bool{
	model.RoleStudent: {
		CapBookSlot:        true,
		CapCancelBooking:   true,
		CapWriteReview:     true,
		CapViewOwnBookings: true,
	},
	model.RoleTutor: {
		CapManageProfile:   true,
		CapManageSchedule:  true,
		CapManageBookings:  true,
		CapViewOwnBookings: true,
	},
	model.RoleAdmin: {
		CapManageUsers: true,
	},
}

// Can проверяет наличие возможности у роли
func (p Principal) Can(c Capability) bool {
	return capabilities[p.Role][c]
}

// Authorize единая проверка на входе в операцию: роль должна иметь возможность,
// а аккаунт не должен быть заблокирован
func Authorize(p Principal, c Capability) error {
	if p.ID == uuid.Nil || !p.Can(c) {
		return apperr.ErrUnauthorized.WithDetail("role", "This action is not available for role "+string(p.Role))
	}
	if p.Status == model.UserStatusBanned {
		return apperr.ErrAccountBanned.WithDetail("Authentication",
			"You are not allowed to access the system. Please contact support.")
	}
	return nil
}
