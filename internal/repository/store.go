package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore хранилище поверх PostgreSQL
type PgStore struct {
	pool  *pgxpool.Pool
	repos *Repositories
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, repos: newRepositories(pool)}
}

func newRepositories(db base.Querier) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Tutors:       NewTutorRepository(db),
		Subjects:     NewSubjectRepository(db),
		Education:    NewEducationRepository(db),
		Availability: NewAvailabilityRepository(db),
		Slots:        NewSlotRepository(db),
		Bookings:     NewBookingRepository(db),
		Reviews:      NewReviewRepository(db),
	}
}

// Repos репозитории вне транзакции, для чтения и одиночных команд
func (s *PgStore) Repos() *Repositories {
	return s.repos
}

// InTx выполняет fn в транзакции READ COMMITTED. Гонки за один слот
// разрешаются блокировками строк (SELECT ... FOR UPDATE) и уникальным
// индексом активного бронирования.
func (s *PgStore) InTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	// Начинаем транзакцию
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
