package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Environment string
	Store       string
	DBDSN       string

	TelegramToken string

	NatsURL           string
	NatsSubjectPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SlotCacheTTL  time.Duration

	MetricsAddr string

	// Генерация слотов из окон доступности, 0 минут отключает задачу
	SlotGenerationMinutes int
	SlotGenerationWeeks   int

	DigestInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Environment:       getString("ENV", "development"),
		Store:             getString("STORE", StorePostgres),
		DBDSN:             os.Getenv("DB_DSN"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		NatsURL:           os.Getenv("NATS_URL"),
		NatsSubjectPrefix: getString("NATS_SUBJECT_PREFIX", "tutor"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SlotCacheTTL, err = getDuration("SLOT_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SlotGenerationMinutes, err = getInt("SLOT_GENERATION_MINUTES", 0); err != nil {
		return nil, err
	}
	if cfg.SlotGenerationWeeks, err = getInt("SLOT_GENERATION_WEEKS", 4); err != nil {
		return nil, err
	}
	if cfg.DigestInterval, err = getDuration("DIGEST_INTERVAL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	switch cfg.Store {
	case StorePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}
	if cfg.SlotGenerationMinutes < 0 || cfg.SlotGenerationWeeks <= 0 {
		return nil, fmt.Errorf("SLOT_GENERATION_MINUTES must be >= 0 and SLOT_GENERATION_WEEKS > 0")
	}
	if cfg.DigestInterval <= 0 {
		return nil, fmt.Errorf("DIGEST_INTERVAL must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
