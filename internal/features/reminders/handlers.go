// Package reminders — handlers.go обрабатывает команду !напоминание.
//
//	!напоминание          — показать настройки
//	!напоминание 08:30    — включить на 08:30
//	!напоминание вкл      — включить на прежнее время
//	!напоминание выкл     — выключить
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/common"
)

// Sender — то, через что обработчик отвечает. *tgbotapi.BotAPI подходит.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler обрабатывает команды напоминаний.
type Handler struct {
	service *Service
	bot     Sender
}

// NewHandler создаёт обработчик команд напоминаний.
func NewHandler(service *Service, bot Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleReminder обрабатывает команду !напоминание с аргументами.
func (h *Handler) HandleReminder(ctx context.Context, chatID, userID int64, args []string) {
	arg := ""
	if len(args) > 0 {
		arg = strings.ToLower(strings.TrimSpace(args[0]))
	}

	switch arg {
	case "":
		settings, err := h.service.Status(ctx, userID)
		if err != nil {
			h.fail(chatID, userID, err)
			return
		}
		h.sendMessage(chatID, formatStatus(settings))

	case "выкл", "off", "нет":
		if err := h.service.Disable(ctx, userID); err != nil {
			h.fail(chatID, userID, err)
			return
		}
		h.sendMessage(chatID, "🔕 Напоминания выключены")

	default:
		clock := arg
		if arg == "вкл" || arg == "on" || arg == "да" {
			clock = ""
		}
		settings, err := h.service.Enable(ctx, userID, clock)
		if err != nil {
			if errors.Is(err, common.ErrBadReminderTime) {
				h.sendMessage(chatID, "❌ "+common.ErrBadReminderTime.Error())
				return
			}
			h.fail(chatID, userID, err)
			return
		}
		h.sendMessage(chatID, fmt.Sprintf(
			"🔔 Напоминания включены: каждый день в %s.\nОни приходят в личные сообщения, так что напиши боту /start, если ещё не писал.",
			settings.RemindAt,
		))
	}
}

func formatStatus(s *Settings) string {
	if !s.Enabled {
		return fmt.Sprintf("🔕 Напоминания выключены.\nВключить: !напоминание %s", s.RemindAt)
	}
	return fmt.Sprintf("🔔 Напоминания включены: каждый день в %s.\nВыключить: !напоминание выкл", s.RemindAt)
}

func (h *Handler) fail(chatID, userID int64, err error) {
	log.WithError(err).WithField("user_id", userID).Error("Ошибка настройки напоминаний")
	h.sendMessage(chatID, "❌ Не удалось изменить напоминания, попробуй позже")
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
