package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender доставляет готовую картинку в чат
type Sender interface {
	SendWeekDigest(ctx context.Context, chatID int64, png []byte, caption string) error
}

// Dispatcher собирает недельное расписание каждого преподавателя
// и отправляет его тем, у кого привязан Telegram
type Dispatcher struct {
	repos  *repository.Repositories
	sender Sender
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(store repository.Store, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repos:  store.Repos(),
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// SendAll возвращает число отправленных дайджестов. Ошибка одного
// преподавателя не останавливает рассылку остальным.
func (d *Dispatcher) SendAll(ctx context.Context) (int, error) {
	ids, err := d.repos.Tutors.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tutors: %w", err)
	}

	sent := 0
	var errs []error
	for _, id := range ids {
		ok, err := d.send(ctx, id)
		if err != nil {
			d.logger.Warn("failed to send week digest",
				zap.String("tutor_profile_id", id.String()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

func (d *Dispatcher) send(ctx context.Context, profileID uuid.UUID) (bool, error) {
	profile, err := d.repos.Tutors.GetByID(ctx, profileID)
	if err != nil {
		return false, fmt.Errorf("get tutor profile: %w", err)
	}
	if profile == nil {
		return false, nil
	}

	user, err := d.repos.Users.GetByID(ctx, profile.UserID)
	if err != nil {
		return false, fmt.Errorf("get tutor user: %w", err)
	}
	if user == nil || user.TelegramID == nil {
		return false, nil
	}

	now := d.now()
	week := weekOf(now)
	entries, err := d.Entries(ctx, profileID, week.start)
	if err != nil {
		return false, err
	}

	png, err := RenderWeek(week.start, entries, now)
	if err != nil {
		return false, fmt.Errorf("render week: %w", err)
	}

	caption := fmt.Sprintf("📅 <b>Расписание на неделю</b> %s - %s",
		week.start.Format("02.01"), week.end.Format("02.01"))
	if err := d.sender.SendWeekDigest(ctx, *user.TelegramID, png, caption); err != nil {
		return false, err
	}

	d.logger.Info("week digest sent",
		zap.String("tutor_profile_id", profileID.String()),
		zap.Int("slots", len(entries)))
	return true, nil
}

// Entries слоты недели, начинающейся с weekStart; у занятых слотов
// подпись с именем студента из активного бронирования
func (d *Dispatcher) Entries(ctx context.Context, profileID uuid.UUID, weekStart time.Time) ([]Entry, error) {
	slots, err := d.repos.Slots.ListByTutorRange(ctx, profileID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	bookings, err := d.repos.Bookings.ListByTutor(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	studentBySlot := make(map[uuid.UUID]uuid.UUID, len(bookings))
	for _, b := range bookings {
		if b.Status.IsActive() {
			studentBySlot[b.TimeSlotID] = b.StudentID
		}
	}

	names := make(map[uuid.UUID]string)
	entries := make([]Entry, 0, len(slots))
	for _, slot := range slots {
		entry := Entry{Slot: slot}
		if studentID, ok := studentBySlot[slot.ID]; ok && slot.IsBooked {
			name, err := d.studentName(ctx, names, studentID)
			if err != nil {
				return nil, err
			}
			entry.Label = name
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (d *Dispatcher) studentName(ctx context.Context, cache map[uuid.UUID]string, id uuid.UUID) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}
	user, err := d.repos.Users.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get student: %w", err)
	}
	var name string
	if user != nil {
		name = user.Name
	}
	cache[id] = name
	return name, nil
}
