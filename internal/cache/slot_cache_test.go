package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSlots(profileID uuid.UUID, date time.Time) []*model.TimeSlot {
	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	return []*model.TimeSlot{
		{ID: uuid.New(), TutorProfileID: profileID, Date: date, StartTime: "09:00", EndTime: "10:00", CreatedAt: created, UpdatedAt: created},
		{ID: uuid.New(), TutorProfileID: profileID, Date: date, StartTime: "11:00", EndTime: "12:30", CreatedAt: created, UpdatedAt: created},
	}
}

func TestSlotCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewSlotCache(db, 5*time.Minute)

	profileID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	key, genKey := openSlotsKey(profileID, date), slotsGenKey(profileID, date)
	slots := sampleSlots(profileID, date)
	data, err := json.Marshal(slots)
	require.NoError(t, err)

	mock.ExpectMGet(key, genKey).SetVal([]interface{}{nil, "3"})
	mock.ExpectEval(setIfGenScript, []string{genKey, key}, "3", string(data), int64(300000)).SetVal(int64(1))
	mock.ExpectMGet(key, genKey).SetVal([]interface{}{string(data), "3"})

	got, gen, ok, err := c.GetOpenSlots(ctx, profileID, date)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, int64(3), gen)

	require.NoError(t, c.SetOpenSlots(ctx, profileID, date, gen, slots))

	got, _, ok, err = c.GetOpenSlots(ctx, profileID, date)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, slots, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCache_MissingGenerationIsZero(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSlotCache(db, time.Minute)

	profileID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectMGet(openSlotsKey(profileID, date), slotsGenKey(profileID, date)).SetVal([]interface{}{nil, nil})

	_, gen, ok, err := c.GetOpenSlots(context.Background(), profileID, date)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Список, прочитанный до Invalidate, не должен попасть в кэш: скрипт
// сравнивает поколение и возвращает 0.
func TestSlotCache_StaleSetIsDropped(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewSlotCache(db, time.Minute)

	profileID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	key, genKey := openSlotsKey(profileID, date), slotsGenKey(profileID, date)
	slots := sampleSlots(profileID, date)
	data, err := json.Marshal(slots)
	require.NoError(t, err)

	mock.ExpectMGet(key, genKey).SetVal([]interface{}{nil, nil})
	mock.ExpectEval(invalidateScript, []string{genKey, key}, (time.Minute + genGrace).Milliseconds()).SetVal(int64(1))
	mock.ExpectEval(setIfGenScript, []string{genKey, key}, "0", string(data), int64(60000)).SetVal(int64(0))
	mock.ExpectMGet(key, genKey).SetVal([]interface{}{nil, "1"})

	_, gen, _, err := c.GetOpenSlots(ctx, profileID, date)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, profileID, date))
	require.NoError(t, c.SetOpenSlots(ctx, profileID, date, gen, slots))

	_, gen, ok, err := c.GetOpenSlots(ctx, profileID, date)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSlotCache(db, time.Minute)

	profileID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	keys := []string{
		"slots:gen:" + profileID.String() + ":2026-10-19",
		"slots:open:" + profileID.String() + ":2026-10-19",
	}
	mock.ExpectEval(invalidateScript, keys, int64(3660000)).SetVal(int64(4))

	require.NoError(t, c.Invalidate(context.Background(), profileID, date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCache_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSlotCache(db, time.Minute)

	profileID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	key, genKey := openSlotsKey(profileID, date), slotsGenKey(profileID, date)

	mock.ExpectMGet(key, genKey).SetErr(errors.New("connection refused"))
	_, _, ok, err := c.GetOpenSlots(context.Background(), profileID, date)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectMGet(key, genKey).SetVal([]interface{}{"{not json", "2"})
	_, _, ok, err = c.GetOpenSlots(context.Background(), profileID, date)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "decode open slots")

	mock.ExpectMGet(key, genKey).SetVal([]interface{}{nil, "x"})
	_, _, _, err = c.GetOpenSlots(context.Background(), profileID, date)
	assert.ErrorContains(t, err, "parse slot generation")

	mock.ExpectEval(invalidateScript, []string{genKey, key}, (time.Minute + genGrace).Milliseconds()).SetErr(errors.New("READONLY"))
	assert.ErrorContains(t, c.Invalidate(context.Background(), profileID, date), "READONLY")
}
