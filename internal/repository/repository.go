package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
)

// Методы Get* возвращают (nil, nil), если запись не найдена.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error
	List(ctx context.Context) ([]*model.User, error)
}

type TutorRepository interface {
	Create(ctx context.Context, profile *model.TutorProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TutorProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.TutorProfile, error)
	// LockByID блокирует строку профиля до конца транзакции
	LockByID(ctx context.Context, id uuid.UUID) error
	UpdateHourlyRate(ctx context.Context, id uuid.UUID, rate float64) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	HasSubject(ctx context.Context, profileID, subjectID uuid.UUID) (bool, error)
	GetSubject(ctx context.Context, profileID, subjectID uuid.UUID) (*model.TutorSubject, error)
	ListSubjectIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
	AddSubjects(ctx context.Context, profileID uuid.UUID, subjectIDs []uuid.UUID) error
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	// ExistingIDs возвращает те из ids, что есть в справочнике
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type EducationRepository interface {
	Create(ctx context.Context, e *model.Education) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Education, error)
	Update(ctx context.Context, e *model.Education) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Education, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, a *model.Availability) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Availability, error)
	Update(ctx context.Context, a *model.Availability) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Availability, error)
	ListByTutorAndDay(ctx context.Context, profileID uuid.UUID, day model.DayOfWeek) ([]*model.Availability, error)
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	// GetByIDForUpdate читает слот с блокировкой строки до конца транзакции
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	SetBooked(ctx context.Context, id uuid.UUID, booked bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTutorAndDate(ctx context.Context, profileID uuid.UUID, date time.Time) ([]*model.TimeSlot, error)
	ListByTutorRange(ctx context.Context, profileID uuid.UUID, from, to time.Time) ([]*model.TimeSlot, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	// FindActiveBySlot первое бронирование слота в статусе PENDING, CONFIRM или COMPLETE
	FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*model.Booking, error)
	ExistsWithStatus(ctx context.Context, profileID, subjectID uuid.UUID, status model.BookingStatus) (bool, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Booking, error)
	ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Booking, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error)
	ListByTutor(ctx context.Context, profileID uuid.UUID) ([]*model.Review, error)
}

// Repositories набор репозиториев, привязанных к одному соединению или транзакции
type Repositories struct {
	Users        UserRepository
	Tutors       TutorRepository
	Subjects     SubjectRepository
	Education    EducationRepository
	Availability AvailabilityRepository
	Slots        SlotRepository
	Bookings     BookingRepository
	Reviews      ReviewRepository
}

// Store единственный источник истины. InTx выполняет fn атомарно:
// при ошибке fn или отмене контекста все изменения откатываются.
type Store interface {
	Repos() *Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}
