package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	// регистрирует Go-миграции в goose
	_ "github.com/Freeeeeet/tutor_scheduler/migrations"
)

// Migrator применяет миграции, вкомпилированные в бинарь пакетом migrations.
// Каталог на диске не нужен.
type Migrator struct {
	provider *goose.Provider
	logger   *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration provider: %w", err)
	}

	return &Migrator{provider: provider, logger: logger}, nil
}

// Run применяет все ещё не применённые миграции
func (mg *Migrator) Run(ctx context.Context) error {
	results, err := mg.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, res := range results {
		mg.logger.Info("Migration applied",
			zap.Int64("version", res.Source.Version),
			zap.Duration("duration", res.Duration),
		)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("Database schema is up to date",
		zap.Int64("version", version),
		zap.Int("applied", len(results)),
	)
	return nil
}

func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := mg.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает только *sql.DB поверх пула, сам пул закрывает App
func (mg *Migrator) Close() error {
	return mg.provider.Close()
}
