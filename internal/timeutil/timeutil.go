// Package timeutil содержит арифметику времени без часовых поясов:
// время суток хранится строкой HH:mm и сравнивается в минутах от полуночи.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/apperr"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseTime переводит HH:mm в минуты от начала суток
func ParseTime(s string) (int, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, apperr.ErrInvalidTimeFormat.WithDetail("time", "Use HH:mm (00:00-23:59)")
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

// FormatMinutes обратное преобразование к HH:mm
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// RangeValid оба значения корректны и start < end
func RangeValid(start, end string) bool {
	s, err := ParseTime(start)
	if err != nil {
		return false
	}
	e, err := ParseTime(end)
	if err != nil {
		return false
	}
	return s < e
}

// ParseRange разбирает пару HH:mm и требует start < end
func ParseRange(start, end string) (int, int, error) {
	if !RangeValid(start, end) {
		return 0, 0, apperr.ErrInvalidTimeRange.WithDetail("time",
			"Time must be in HH:mm format (e.g. 10:00) and startTime must be earlier than endTime")
	}
	s, _ := ParseTime(start)
	e, _ := ParseTime(end)
	return s, e, nil
}

// WeekdayOf день недели календарной даты (по UTC), порядок с воскресенья
func WeekdayOf(date time.Time) model.DayOfWeek {
	return model.Weekdays[date.UTC().Weekday()]
}

// ParseDate принимает YYYY-MM-DD или RFC3339 и возвращает полночь UTC
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return TruncateDate(t), nil
	}
	return time.Time{}, apperr.ErrInvalidDate.WithDetail("date", "Date must be a valid ISO date string (YYYY-MM-DD)")
}

// TruncateDate отбрасывает время суток, оставляя календарный день UTC
func TruncateDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps пересечение полуоткрытых интервалов [s1,e1) и [s2,e2).
// Соседние интервалы (e1 == s2) не пересекаются.
func Overlaps(s1, e1, s2, e2 int) bool {
	return !(e1 <= s2 || s1 >= e2)
}

// Within интервал [s,e) целиком лежит внутри окна [ws,we)
func Within(ws, we, s, e int) bool {
	return ws <= s && e <= we
}
