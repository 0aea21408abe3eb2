package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/cache"
	"github.com/Freeeeeet/tutor_scheduler/internal/config"
	"github.com/Freeeeeet/tutor_scheduler/internal/digest"
	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App собранный процесс: хранилище, сервисы и фоновые задачи
type App struct {
	Store        repository.Store
	Availability *service.AvailabilityService
	Slots        *service.SlotService
	Bookings     *service.BookingService
	Reviews      *service.ReviewService
	Tutors       *service.TutorService
	Admin        *service.AdminService

	cfg       *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	scheduler *Scheduler
	closers   []func() error
}

// New подключает внешние зависимости. Необязательные (NATS, Redis, Telegram)
// подключаются только если заданы в конфиге.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	var err error
	if a.Store, err = a.openStore(ctx); err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	hooks := service.Hooks{Metrics: m}
	var publishers events.Multi

	if cfg.NatsURL != "" {
		natsPub, err := events.NewNatsPublisher(cfg.NatsURL, cfg.NatsSubjectPrefix, logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, natsPub.Close)
		publishers = append(publishers, natsPub)
		logger.Info("NATS publisher enabled", zap.String("url", cfg.NatsURL))
	}

	var dispatcher DigestDispatcher
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, a.Store, logger)
		if err != nil {
			return err
		}
		publishers = append(publishers, notifier)
		dispatcher = digest.NewDispatcher(a.Store, notifier, logger)
		logger.Info("Telegram notifications enabled")
	}

	if len(publishers) > 0 {
		hooks.Publisher = publishers
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rdb.Close)
		hooks.Cache = cache.NewSlotCache(rdb, cfg.SlotCacheTTL)
	}

	a.Availability = service.NewAvailabilityService(a.Store, logger)
	a.Slots = service.NewSlotService(a.Store, hooks, logger)
	a.Bookings = service.NewBookingService(a.Store, service.NewPricingCalculator(), hooks, logger)
	a.Reviews = service.NewReviewService(a.Store, hooks, logger)
	a.Tutors = service.NewTutorService(a.Store, logger)
	a.Admin = service.NewAdminService(a.Store, logger)

	a.scheduler = NewScheduler(a.Store, a.Slots, dispatcher, m, SchedulerConfig{
		SlotMinutes:    cfg.SlotGenerationMinutes,
		Weeks:          cfg.SlotGenerationWeeks,
		DigestInterval: cfg.DigestInterval,
	}, logger)

	return nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	if a.cfg.Store == config.StoreMemory {
		a.logger.Warn("Using in-memory store, data will be lost on restart")
		return memory.NewStore(), nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, a.logger)
	if err != nil {
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return nil, err
	}

	return repository.NewPgStore(pool), nil
}

// Run блокируется до отмены контекста или падения одной из задач
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.scheduler.Run(ctx)
	})

	if a.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, a.cfg.MetricsAddr, a.registry, a.logger)
		})
	}

	return g.Wait()
}

// Close освобождает ресурсы в обратном порядке открытия
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
