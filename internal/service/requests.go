package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Входные данные операций. Теги validate проверяют только форму запроса,
// предметные проверки (формат времени, рейтинг, ставка) делают сервисы.

type AvailabilityRequest struct {
	DayOfWeek model.DayOfWeek `json:"dayOfWeek"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
}

// AvailabilityPatch частичное обновление окна, nil поля не меняются
type AvailabilityPatch struct {
	DayOfWeek *model.DayOfWeek `json:"dayOfWeek,omitempty"`
	StartTime *string          `json:"startTime,omitempty"`
	EndTime   *string          `json:"endTime,omitempty"`
}

type SlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type SlotPatch struct {
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
}

type CreateBookingRequest struct {
	TimeSlotID uuid.UUID `json:"timeSlotId" validate:"required"`
	SubjectID  uuid.UUID `json:"subjectId" validate:"required"`
}

type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
	Rating    float64   `json:"rating"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type AddSubjectsRequest struct {
	SubjectIDs []uuid.UUID `json:"subjectIds" validate:"required,min=1,dive,required"`
}

type UpdateUserStatusRequest struct {
	UserID uuid.UUID        `json:"userId" validate:"required"`
	Status model.UserStatus `json:"status" validate:"required,oneof=ACTIVE BANNED"`
}

type EducationRequest struct {
	Institute    string `json:"institute" validate:"required,max=200"`
	Degree       string `json:"degree" validate:"required,max=200"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"required,max=200"`
	StartYear    int    `json:"startYear" validate:"required,min=1900,max=2100"`
	EndYear      *int   `json:"endYear,omitempty" validate:"omitempty,min=1900,max=2100"`
	IsCurrent    bool   `json:"isCurrent"`
}

// EducationPatch частичное обновление: nil поля не меняются
type EducationPatch struct {
	Institute    *string `json:"institute,omitempty" validate:"omitempty,min=1,max=200"`
	Degree       *string `json:"degree,omitempty" validate:"omitempty,min=1,max=200"`
	FieldOfStudy *string `json:"fieldOfStudy,omitempty" validate:"omitempty,min=1,max=200"`
	StartYear    *int    `json:"startYear,omitempty" validate:"omitempty,min=1900,max=2100"`
	EndYear      *int    `json:"endYear,omitempty" validate:"omitempty,min=1900,max=2100"`
	IsCurrent    *bool   `json:"isCurrent,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRequest переводит ошибки валидатора в INVALID_INPUT с деталями по полям
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrInvalidInput.WithDetail("", err.Error())
	}

	out := apperr.ErrInvalidInput
	for _, fe := range verrs {
		out = out.WithDetail(fe.Field(), "failed on '"+fe.Tag()+"'")
	}
	return out
}
