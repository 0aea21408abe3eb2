// Package cache кэш свободных слотов в Redis. Только для чтения расписания:
// бронирование и проверки пересечений всегда идут в основное хранилище.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	openSlotsPrefix = "slots:open:"
	slotsGenPrefix  = "slots:gen:"
)

// Ключ поколения живёт на genGrace дольше данных.
const genGrace = time.Hour

// KEYS[1] поколение, KEYS[2] данные. ARGV: поколение читателя, данные, ttl в мс.
const setIfGenScript = `
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`

// KEYS[1] поколение, KEYS[2] данные. ARGV[1] ttl поколения в мс.
const invalidateScript = `
local gen = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return gen
`

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("Redis connected", zap.String("addr", addr))
	return rdb, nil
}

type SlotCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSlotCache(rdb redis.Cmdable, ttl time.Duration) *SlotCache {
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func openSlotsKey(profileID uuid.UUID, date time.Time) string {
	return openSlotsPrefix + profileID.String() + ":" + date.Format(model.DateLayout)
}

func slotsGenKey(profileID uuid.UUID, date time.Time) string {
	return slotsGenPrefix + profileID.String() + ":" + date.Format(model.DateLayout)
}

// GetOpenSlots ok == false, если списка нет. gen отдаётся и при промахе:
// его нужно вернуть в SetOpenSlots.
func (c *SlotCache) GetOpenSlots(ctx context.Context, profileID uuid.UUID, date time.Time) ([]*model.TimeSlot, int64, bool, error) {
	vals, err := c.rdb.MGet(ctx, openSlotsKey(profileID, date), slotsGenKey(profileID, date)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("get open slots: %w", err)
	}

	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}

	var slots []*model.TimeSlot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, gen, false, fmt.Errorf("decode open slots: %w", err)
	}
	return slots, gen, true, nil
}

// SetOpenSlots пишет список, только если поколение ключа всё ещё gen.
// Устаревшая запись молча отбрасывается.
func (c *SlotCache) SetOpenSlots(ctx context.Context, profileID uuid.UUID, date time.Time, gen int64, slots []*model.TimeSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode open slots: %w", err)
	}

	keys := []string{slotsGenKey(profileID, date), openSlotsKey(profileID, date)}
	err = c.rdb.Eval(ctx, setIfGenScript, keys, strconv.FormatInt(gen, 10), string(data), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("set open slots: %w", err)
	}
	return nil
}

func (c *SlotCache) Invalidate(ctx context.Context, profileID uuid.UUID, date time.Time) error {
	keys := []string{slotsGenKey(profileID, date), openSlotsKey(profileID, date)}
	if err := c.rdb.Eval(ctx, invalidateScript, keys, (c.ttl + genGrace).Milliseconds()).Err(); err != nil {
		return fmt.Errorf("invalidate open slots: %w", err)
	}
	return nil
}

func parseGen(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected slot generation %T", v)
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse slot generation: %w", err)
	}
	return gen, nil
}
