package digest

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotAt(date time.Time, start, end string, booked bool) *model.TimeSlot {
	return &model.TimeSlot{ID: uuid.New(), Date: date, StartTime: start, EndTime: end, IsBooked: booked}
}

func TestWeekOf(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	for offset := 0; offset < 7; offset++ {
		w := weekOf(monday.AddDate(0, 0, offset).Add(15 * time.Hour))
		assert.Equal(t, monday, w.start, "offset %d", offset)
		assert.Equal(t, monday.AddDate(0, 0, 6), w.end)
	}
}

func TestHourRangeOf(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	hr := hourRangeOf([]Entry{
		{Slot: slotAt(date, "09:30", "10:30", false)},
		{Slot: slotAt(date, "14:00", "15:15", true)},
	})
	assert.Equal(t, hourRange{start: 8, end: 17, total: 9}, hr)

	empty := hourRangeOf(nil)
	assert.Equal(t, defaultMinHour-hourPaddingTop, empty.start)
	assert.Equal(t, defaultMaxHour+hourPaddingBot, empty.end)

	late := hourRangeOf([]Entry{{Slot: slotAt(date, "22:00", "23:59", false)}})
	assert.Equal(t, 24, late.end)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Анна", truncate("Анна", 20))
	assert.Equal(t, "Александра Ко...", truncate("Александра Константиновна", 16))
}

func TestRenderWeek(t *testing.T) {
	date := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Slot: slotAt(date, "09:00", "10:00", false)},
		{Slot: slotAt(date, "10:00", "11:30", true), Label: "Мария Иванова"},
		{Slot: slotAt(date.AddDate(0, 0, 2), "18:00", "19:00", true)},
	}

	data, err := RenderWeek(date, entries, time.Date(2026, 10, 21, 10, 15, 0, 0, time.UTC))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}
