// Package memory хранилище в памяти процесса: таблицы как арены значений,
// связи только через идентификаторы. Транзакции выполняются строго по одной
// и применяются целиком при коммите.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
)

type tables struct {
	users         map[uuid.UUID]model.User
	tutors        map[uuid.UUID]model.TutorProfile
	tutorSubjects map[uuid.UUID]model.TutorSubject
	subjects      map[uuid.UUID]model.Subject
	educations    map[uuid.UUID]model.Education
	availability  map[uuid.UUID]model.Availability
	slots         map[uuid.UUID]model.TimeSlot
	bookings      map[uuid.UUID]model.Booking
	reviews       map[uuid.UUID]model.Review
}

func newTables() *tables {
	return &tables{
		users:         make(map[uuid.UUID]model.User),
		tutors:        make(map[uuid.UUID]model.TutorProfile),
		tutorSubjects: make(map[uuid.UUID]model.TutorSubject),
		subjects:      make(map[uuid.UUID]model.Subject),
		educations:    make(map[uuid.UUID]model.Education),
		availability:  make(map[uuid.UUID]model.Availability),
		slots:         make(map[uuid.UUID]model.TimeSlot),
		bookings:      make(map[uuid.UUID]model.Booking),
		reviews:       make(map[uuid.UUID]model.Review),
	}
}

// clone неглубокая копия достаточна: в картах лежат значения, не указатели
func (t *tables) clone() *tables {
	return &tables{
		users:         maps.Clone(t.users),
		tutors:        maps.Clone(t.tutors),
		tutorSubjects: maps.Clone(t.tutorSubjects),
		subjects:      maps.Clone(t.subjects),
		educations:    maps.Clone(t.educations),
		availability:  maps.Clone(t.availability),
		slots:         maps.Clone(t.slots),
		bookings:      maps.Clone(t.bookings),
		reviews:       maps.Clone(t.reviews),
	}
}

type Store struct {
	mu   sync.RWMutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

// view доступ к таблицам: в транзакции уже под блокировкой,
// вне транзакции каждая операция берёт блокировку сама
type view struct {
	store *Store
	tx    *tables
}

func (v *view) read() (*tables, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.RLock()
	return v.store.data, v.store.mu.RUnlock
}

func (v *view) write() (*tables, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.Lock()
	return v.store.data, v.store.mu.Unlock
}

func (s *Store) repos(v *view) *repository.Repositories {
	return &repository.Repositories{
		Users:        &userRepo{v},
		Tutors:       &tutorRepo{v},
		Subjects:     &subjectRepo{v},
		Education:    &educationRepo{v},
		Availability: &availabilityRepo{v},
		Slots:        &slotRepo{v},
		Bookings:     &bookingRepo{v},
		Reviews:      &reviewRepo{v},
	}
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos(&view{store: s})
}

// InTx транзакции сериализуются одним мьютексом, поэтому видят
// согласованное состояние. Изменения применяются только при успехе fn.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, s.repos(&view{store: s, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = work
	return nil
}
