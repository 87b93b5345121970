// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: /login → пароль → клавиатура → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/common"
	"serotonyl.ru/exercise-bot/internal/features/members"
	"serotonyl.ru/exercise-bot/internal/features/streak"
)

// Sender — то, через что обработчик отвечает. *tgbotapi.BotAPI подходит.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Ledger — действия над журналами, доступные админу.
type Ledger interface {
	Reset(ctx context.Context, userID int64) error
	Leaderboard(ctx context.Context, limit int) ([]streak.LeaderboardEntry, error)
}

// Members — список участников для выбора.
type Members interface {
	List(ctx context.Context) ([]*members.Member, error)
	Count(ctx context.Context) (int, error)
	DisplayName(ctx context.Context, userID int64) string
}

const statsTop = 5

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	ledger  Ledger
	members Members
	bot     Sender
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, ledger Ledger, members Members, bot Sender) *Handler {
	return &Handler{
		service: service,
		ledger:  ledger,
		members: members,
		bot:     bot,
	}
}

// HandleAdminMessage обрабатывает сообщение администратора в личке.
// Возвращает true, если сообщение относилось к админке и дальше его
// обрабатывать не нужно. Без открытой сессии обычные команды проходят мимо.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	if !h.service.IsAdmin(userID) {
		return false
	}
	text = strings.TrimSpace(text)

	state := h.service.GetState(userID)
	if state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	if text == "/login" || strings.HasPrefix(text, "/login ") {
		password := strings.TrimSpace(strings.TrimPrefix(text, "/login"))
		if password == "" {
			h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
			h.service.SetState(userID, StateAwaitingPassword, nil)
			return true
		}
		h.handlePasswordInput(ctx, chatID, userID, password)
		return true
	}

	if !h.service.HasActiveSession(ctx, userID) {
		if isPanelKeyword(text) {
			h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
			h.service.SetState(userID, StateAwaitingPassword, nil)
			return true
		}
		return false
	}

	h.service.Touch(ctx, userID)

	if state != nil {
		switch state.State {
		case StateResetSelect:
			h.handleResetSelect(ctx, chatID, userID, text, state)
			return true
		case StateResetConfirm:
			h.handleResetConfirm(ctx, chatID, userID, text, state)
			return true
		}
	}

	switch {
	case text == ButtonReset:
		h.startReset(ctx, chatID, userID)
		return true
	case text == ButtonStats:
		h.showStats(ctx, chatID)
		return true
	case text == ButtonLogout:
		if err := h.service.Logout(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка выхода из админки")
		}
		msg := tgbotapi.NewMessage(chatID, "👋 Сессия закрыта")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		h.send(msg)
		return true
	case isPanelKeyword(text):
		h.showKeyboard(chatID)
		return true
	}

	return false
}

func isPanelKeyword(text string) bool {
	switch strings.ToLower(text) {
	case "админ", "панель":
		return true
	}
	return false
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID int64, userID int64, password string) {
	h.service.ClearState(userID)
	if err := h.service.VerifyPassword(ctx, userID, password); err != nil {
		h.sendMessage(chatID, errText(err))
		return
	}
	h.sendMessage(chatID, "✅ Аутентификация успешна!")
	h.showKeyboard(chatID)
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonReset),
			tgbotapi.NewKeyboardButton(ButtonStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonLogout),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "✅ Админ-панель открыта")
	msg.ReplyMarkup = keyboard
	h.send(msg)
}

// --- Сбросить прогресс (3 шага) ---

// startReset — Шаг 1: показать участников.
func (h *Handler) startReset(ctx context.Context, chatID int64, userID int64) {
	list, err := h.members.List(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения участников")
		h.sendMessage(chatID, "❌ Не удалось получить список участников")
		return
	}
	if len(list) == 0 {
		h.sendMessage(chatID, "Участников пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("Чей прогресс сбросить? Отправьте номер:\n\n")
	for i, m := range list {
		sb.WriteString(fmt.Sprintf("%d. %s (id%d)\n", i+1, m.DisplayName(), m.UserID))
	}

	h.sendMessage(chatID, sb.String())
	h.service.SetState(userID, StateResetSelect, list)
}

// handleResetSelect — Шаг 2: админ выбрал номер.
func (h *Handler) handleResetSelect(ctx context.Context, chatID int64, userID int64, text string, state *AdminState) {
	list, _ := state.Data.([]*members.Member)

	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(list) {
		h.sendMessage(chatID, "❌ Неверный номер. Попробуйте ещё раз.")
		return
	}

	selected := list[num-1]
	h.sendMessage(chatID, fmt.Sprintf("Сбросить очки, серию и сложность %s? Напишите «да» для подтверждения.", selected.DisplayName()))
	h.service.SetState(userID, StateResetConfirm, selected)
}

// handleResetConfirm — Шаг 3: подтверждение.
func (h *Handler) handleResetConfirm(ctx context.Context, chatID int64, userID int64, text string, state *AdminState) {
	selected, _ := state.Data.(*members.Member)
	h.service.ClearState(userID)

	if selected == nil || strings.ToLower(text) != "да" {
		h.sendMessage(chatID, "Отменено")
		return
	}

	if err := h.ledger.Reset(ctx, selected.UserID); err != nil {
		log.WithError(err).WithField("target_id", selected.UserID).Error("Ошибка сброса журнала")
		h.sendMessage(chatID, errText(err))
		return
	}

	log.WithFields(log.Fields{
		"admin_id":  userID,
		"target_id": selected.UserID,
	}).Info("Админ сбросил прогресс")
	h.sendMessage(chatID, fmt.Sprintf("✅ Прогресс %s сброшен", selected.DisplayName()))
}

// showStats показывает число участников и лучших по очкам.
func (h *Handler) showStats(ctx context.Context, chatID int64) {
	count, err := h.members.Count(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка подсчёта участников")
		h.sendMessage(chatID, "❌ Не удалось получить статистику")
		return
	}
	top, err := h.ledger.Leaderboard(ctx, statsTop)
	if err != nil {
		log.WithError(err).Error("Ошибка получения таблицы лидеров")
		h.sendMessage(chatID, "❌ Не удалось получить статистику")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 Участников: %d\n", count))
	if len(top) == 0 {
		sb.WriteString("Журналов пока нет")
	} else {
		sb.WriteString("\nЛучшие:\n")
		for i, e := range top {
			sb.WriteString(fmt.Sprintf("%d. %s — %s, серия %d %s\n",
				i+1, h.members.DisplayName(ctx, e.UserID),
				common.FormatPoints(e.Score),
				e.StreakDays, common.PluralizeDays(e.StreakDays),
			))
		}
	}
	h.sendMessage(chatID, strings.TrimRight(sb.String(), "\n"))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
