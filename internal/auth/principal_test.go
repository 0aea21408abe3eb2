package auth

import (
	"testing"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize_RoleCapabilities(t *testing.T) {
	student := Principal{ID: uuid.New(), Role: model.RoleStudent, Status: model.UserStatusActive}
	tutor := Principal{ID: uuid.New(), Role: model.RoleTutor, Status: model.UserStatusActive}
	admin := Principal{ID: uuid.New(), Role: model.RoleAdmin, Status: model.UserStatusActive}

	assert.NoError(t, Authorize(student, CapBookSlot))
	assert.NoError(t, Authorize(student, CapWriteReview))
	assert.NoError(t, Authorize(tutor, CapManageSchedule))
	assert.NoError(t, Authorize(tutor, CapManageBookings))
	assert.NoError(t, Authorize(admin, CapManageUsers))

	assert.True(t, apperr.IsCode(Authorize(tutor, CapBookSlot), apperr.CodeUnauthorized))
	assert.True(t, apperr.IsCode(Authorize(student, CapManageSchedule), apperr.CodeUnauthorized))
	assert.True(t, apperr.IsCode(Authorize(admin, CapManageBookings), apperr.CodeUnauthorized))
}

func TestAuthorize_Banned(t *testing.T) {
	p := Principal{ID: uuid.New(), Role: model.RoleStudent, Status: model.UserStatusBanned}
	err := Authorize(p, CapBookSlot)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountBanned))
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestAuthorize_AnonymousRejected(t *testing.T) {
	err := Authorize(Principal{Role: model.RoleStudent}, CapBookSlot)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
