// Package notify доставляет уведомления участникам бронирований в Telegram.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/tutor_scheduler/internal/events"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sender часть API бота, которую использует уведомитель
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

type TelegramNotifier struct {
	bot    sender
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewTelegramNotifier создаёт клиента бота. Входящие апдейты не обрабатываются,
// бот используется только для отправки.
func NewTelegramNotifier(token string, store repository.Store, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newTelegramNotifier(b, store.Repos(), logger), nil
}

func newTelegramNotifier(s sender, repos *repository.Repositories, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: s, repos: repos, logger: logger}
}

// Publish отправляет сообщение той стороне, которой событие адресовано:
// преподавателю о новых бронированиях, отменах и отзывах, студенту о смене статуса.
// Пользователи без привязанного Telegram пропускаются.
func (n *TelegramNotifier) Publish(ctx context.Context, ev events.Event) error {
	slot, err := n.repos.Slots.GetByID(ctx, ev.TimeSlotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	when := "(время неизвестно)"
	if slot != nil {
		when = fmt.Sprintf("%s %s-%s", slot.Date.Format("02.01.2006"), slot.StartTime, slot.EndTime)
	}

	switch ev.Type {
	case events.BookingCreated:
		student, err := n.repos.Users.GetByID(ctx, ev.StudentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		name := "Студент"
		if student != nil {
			name = student.Name
		}
		text := fmt.Sprintf("📅 <b>Новое бронирование</b>\n\n%s записался на %s\nСтоимость: %.2f",
			html.EscapeString(name), when, ev.BookingPrice)
		return n.notifyTutor(ctx, ev.TutorProfileID, text)

	case events.BookingCancelled:
		return n.notifyTutor(ctx, ev.TutorProfileID,
			fmt.Sprintf("❌ <b>Бронирование отменено</b>\n\nЗанятие %s отменено студентом", when))

	case events.BookingConfirmed:
		return n.notifyUser(ctx, ev.StudentID,
			fmt.Sprintf("✅ <b>Бронирование подтверждено</b>\n\nЗанятие %s", when))

	case events.BookingCompleted:
		return n.notifyUser(ctx, ev.StudentID,
			fmt.Sprintf("🎓 <b>Занятие завершено</b>\n\nЗанятие %s проведено. Можно оставить отзыв.", when))

	case events.ReviewCreated:
		return n.notifyTutor(ctx, ev.TutorProfileID,
			fmt.Sprintf("⭐ <b>Новый отзыв</b>\n\nОценка %.1f за занятие %s", ev.Rating, when))
	}

	return nil
}

// SendWeekDigest отправляет картинку с недельным расписанием
func (n *TelegramNotifier) SendWeekDigest(ctx context.Context, chatID int64, png []byte, caption string) error {
	_, err := n.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(png),
		},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send week digest: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) notifyTutor(ctx context.Context, profileID uuid.UUID, text string) error {
	profile, err := n.repos.Tutors.GetByID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("get tutor profile: %w", err)
	}
	if profile == nil {
		return nil
	}
	return n.notifyUser(ctx, profile.UserID, text)
}

func (n *TelegramNotifier) notifyUser(ctx context.Context, userID uuid.UUID, text string) error {
	user, err := n.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	chatID, ok := chatOf(user)
	if !ok {
		n.logger.Debug("user has no telegram chat, skipping notification",
			zap.String("user_id", userID.String()))
		return nil
	}

	_, err = n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func chatOf(user *model.User) (int64, bool) {
	if user == nil || user.TelegramID == nil {
		return 0, false
	}
	return *user.TelegramID, true
}
