package model

import (
	"time"

	"github.com/google/uuid"
)

// Education запись об образовании в профиле преподавателя
type Education struct {
	ID             uuid.UUID `json:"id"`
	TutorProfileID uuid.UUID `json:"tutor_profile_id"`
	Institute      string    `json:"institute"`
	Degree         string    `json:"degree"`
	FieldOfStudy   string    `json:"field_of_study"`
	StartYear      int       `json:"start_year"`
	EndYear        *int      `json:"end_year"` // nil, пока учёба не закончена
	IsCurrent      bool      `json:"is_current"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// YearsValid год окончания, если указан, не раньше года начала
func (e *Education) YearsValid() bool {
	return e.EndYear == nil || e.StartYear <= *e.EndYear
}
