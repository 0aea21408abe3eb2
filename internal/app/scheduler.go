package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	jobSlotGeneration = "slot_generation"
	jobWeekDigest     = "week_digest"
)

type SlotGenerator interface {
	GenerateFromAvailability(ctx context.Context, profileID uuid.UUID, from time.Time, weeks, slotMinutes int) (int, error)
}

type DigestDispatcher interface {
	SendAll(ctx context.Context) (int, error)
}

type JobRecorder interface {
	ObserveJob(job string, err error)
}

type SchedulerConfig struct {
	// 0 отключает генерацию слотов
	SlotMinutes        int
	Weeks              int
	GenerationInterval time.Duration
	DigestInterval     time.Duration
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	repos   *repository.Repositories
	slots   SlotGenerator
	digest  DigestDispatcher // nil, если уведомления выключены
	metrics JobRecorder
	cfg     SchedulerConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduler создаёт новый планировщик
func NewScheduler(store repository.Store, slots SlotGenerator, digest DigestDispatcher, metrics JobRecorder, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.GenerationInterval <= 0 {
		cfg.GenerationInterval = 24 * time.Hour
	}
	return &Scheduler{
		repos:   store.Repos(),
		slots:   slots,
		digest:  digest,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Run запускает включённые задачи и блокируется до отмены контекста
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting background scheduler",
		zap.Int("slot_minutes", s.cfg.SlotMinutes),
		zap.Bool("digest", s.digest != nil))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if s.cfg.SlotMinutes > 0 {
		g.Go(func() error {
			runEvery(ctx, s.cfg.GenerationInterval, func(ctx context.Context) {
				_ = s.generateSlots(ctx)
			})
			return nil
		})
	}
	if s.digest != nil && s.cfg.DigestInterval > 0 {
		g.Go(func() error {
			runEvery(ctx, s.cfg.DigestInterval, func(ctx context.Context) {
				_ = s.sendDigests(ctx)
			})
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info("Background scheduler stopped")
	return err
}

// runEvery первый запуск сразу, дальше по тикеру
func runEvery(ctx context.Context, interval time.Duration, task func(ctx context.Context)) {
	task(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// generateSlots генерирует слоты из окон доступности всех преподавателей
func (s *Scheduler) generateSlots(ctx context.Context) (err error) {
	defer func() { s.metrics.ObserveJob(jobSlotGeneration, err) }()

	s.logger.Info("Starting automatic slot generation")

	ids, err := s.repos.Tutors.ListIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tutors", zap.Error(err))
		return fmt.Errorf("list tutors: %w", err)
	}

	from := s.now()
	total := 0
	var errs []error
	for _, id := range ids {
		n, err := s.slots.GenerateFromAvailability(ctx, id, from, s.cfg.Weeks, s.cfg.SlotMinutes)
		if err != nil {
			s.logger.Error("Failed to generate slots",
				zap.String("tutor_profile_id", id.String()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		total += n
	}

	s.logger.Info("Automatic slot generation completed",
		zap.Int("tutors", len(ids)),
		zap.Int("created", total))
	return errors.Join(errs...)
}

func (s *Scheduler) sendDigests(ctx context.Context) (err error) {
	defer func() { s.metrics.ObserveJob(jobWeekDigest, err) }()

	sent, err := s.digest.SendAll(ctx)
	if err != nil {
		s.logger.Error("Week digest finished with errors", zap.Int("sent", sent), zap.Error(err))
		return err
	}

	s.logger.Info("Week digest sent", zap.Int("sent", sent))
	return nil
}
