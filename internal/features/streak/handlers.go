// Package streak — handlers.go обрабатывает команды журнала:
// !упражнение, !сделал, !другое, !сложнее, !легче, !очки, !история, !топ.
package streak

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

// NameResolver подставляет имя участника в таблицу лидеров.
type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) string
}

const (
	historyLimit     = 10
	leaderboardLimit = 10
)

// Handler обрабатывает команды журнала.
type Handler struct {
	service *Service
	bot     Sender
	names   NameResolver
}

// NewHandler создаёт новый обработчик команд журнала.
func NewHandler(service *Service, bot Sender, names NameResolver) *Handler {
	return &Handler{service: service, bot: bot, names: names}
}

// HandleExercise обрабатывает команду !упражнение — показывает текущее упражнение и счёт.
//
// Формат ответа:
//
//	🏋️ Упражнение: Отжимания — 21 повторение
//
//	⭐ Счёт: 35 очков (при выполнении спишется ещё 15)
//	🔥 Серия: 5 дней
//	✅ Сегодня выполнено: 0
//
//	💬 Маленькие шаги приводят к большим переменам. 🚀
func (h *Handler) HandleExercise(ctx context.Context, chatID, userID int64) {
	ov, err := h.service.Overview(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения журнала")
		h.sendMessage(chatID, "❌ Не удалось загрузить твой прогресс, попробуй позже")
		return
	}
	h.sendMessage(chatID, formatOverview(ov))
}

// HandleScore обрабатывает команду !очки — коротко показывает счёт и серию.
func (h *Handler) HandleScore(ctx context.Context, chatID, userID int64) {
	ov, err := h.service.Overview(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения журнала")
		h.sendMessage(chatID, "❌ Не удалось загрузить твой прогресс, попробуй позже")
		return
	}
	h.sendMessage(chatID, formatScore(ov))
}

// HandleDone обрабатывает команду !сделал — засчитывает выполнение.
func (h *Handler) HandleDone(ctx context.Context, chatID, userID int64) {
	res, err := h.service.Complete(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка выполнения упражнения")
		h.sendMessage(chatID, "❌ Не удалось засчитать выполнение, попробуй ещё раз")
		return
	}
	h.sendMessage(chatID, formatCompletion(res))
}

// HandleAnother обрабатывает команду !другое — случайное упражнение.
func (h *Handler) HandleAnother(ctx context.Context, chatID, userID int64) {
	inst, err := h.service.NewExercise(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка выбора упражнения")
		h.sendMessage(chatID, "❌ Не удалось выбрать упражнение")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🎲 Новое упражнение: %s\n\nКогда сделаешь — напиши !сделал", inst.Describe()))
}

// HandleAdjust обрабатывает команды !сложнее и !легче.
func (h *Handler) HandleAdjust(ctx context.Context, chatID, userID int64, direction Direction) {
	res, err := h.service.Adjust(ctx, userID, direction)
	if err != nil {
		if errors.Is(err, common.ErrInvalidRange) {
			h.sendMessage(chatID, "🙂 Легче уже некуда: меньше одного повторения не бывает")
			return
		}
		if errors.Is(err, common.ErrRangeTooHigh) {
			h.sendMessage(chatID, "🏆 Сложнее уже некуда, это предел")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка изменения сложности")
		h.sendMessage(chatID, "❌ Не удалось изменить сложность")
		return
	}
	h.sendMessage(chatID, formatAdjust(res, direction))
}

// HandleHistory обрабатывает команду !история — последние выполнения.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	items, err := h.service.History(ctx, userID, historyLimit)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения истории")
		h.sendMessage(chatID, "❌ Не удалось загрузить историю")
		return
	}
	h.sendMessage(chatID, formatHistory(items, h.service.ExerciseName))
}

// HandleTop обрабатывает команду !топ — таблица лидеров.
func (h *Handler) HandleTop(ctx context.Context, chatID int64) {
	entries, err := h.service.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		log.WithError(err).Error("Ошибка получения таблицы лидеров")
		h.sendMessage(chatID, "❌ Не удалось загрузить таблицу лидеров")
		return
	}
	h.sendMessage(chatID, formatLeaderboard(ctx, entries, h.names))
}

func formatOverview(ov *Overview) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏋️ Упражнение: %s\n\n", ov.Exercise.Describe()))
	sb.WriteString(fmt.Sprintf("⭐ Счёт: %s", common.FormatPoints(ov.DisplayScore)))
	if ov.PendingPenalty > 0 {
		sb.WriteString(fmt.Sprintf(" (при выполнении спишется ещё %d)", ov.PendingPenalty))
	}
	sb.WriteString(fmt.Sprintf("\n🔥 Серия: %d %s\n", ov.StreakDays, common.PluralizeDays(ov.StreakDays)))
	sb.WriteString(fmt.Sprintf("✅ Сегодня выполнено: %d\n\n", ov.CompletedToday))
	sb.WriteString("💬 " + ov.Motivation)
	return sb.String()
}

func formatScore(ov *Overview) string {
	return fmt.Sprintf("⭐ У тебя %s, серия %d %s",
		common.FormatPoints(ov.DisplayScore),
		ov.StreakDays, common.PluralizeDays(ov.StreakDays),
	)
}

func formatCompletion(res *CompletionResult) string {
	if res.AlreadyCompleted {
		return fmt.Sprintf("✅ Сегодня ты уже выполнил упражнение. Возвращайся завтра!\n\n⭐ Счёт: %s",
			common.FormatPoints(res.Score))
	}

	var sb strings.Builder
	sb.WriteString(res.Message + "\n\n")
	sb.WriteString(fmt.Sprintf("🏋️ %s\n", res.Exercise.Describe()))
	sb.WriteString(fmt.Sprintf("%s (выполнение №%d за сегодня)\n", common.FormatPointsDelta(res.Points), res.Position))
	if res.Penalty > 0 {
		sb.WriteString(fmt.Sprintf("%s за пропущенные дни\n", common.FormatPointsDelta(-res.Penalty)))
	}
	sb.WriteString(fmt.Sprintf("\n⭐ Счёт: %s\n🔥 Серия: %d %s",
		common.FormatPoints(res.Score),
		res.StreakDays, common.PluralizeDays(res.StreakDays),
	))
	return sb.String()
}

func formatAdjust(res *AdjustResult, direction Direction) string {
	title := "💪 Сделали сложнее"
	if direction == Decrease {
		title = "🪶 Сделали легче"
	}
	return fmt.Sprintf("%s: теперь %d–%d\n\n🏋️ Упражнение: %s",
		title, res.Range.Min, res.Range.Max, res.Exercise.Describe())
}

func formatHistory(items []*Completion, name func(string) string) string {
	if len(items) == 0 {
		return "📜 История пуста. Начни с команды !упражнение"
	}
	var sb strings.Builder
	sb.WriteString("📜 Последние выполнения:\n\n")
	for _, c := range items {
		sb.WriteString(fmt.Sprintf("%s — %s, %d (%s)\n",
			c.CompletedOn.Format("02.01"),
			name(c.ExerciseID),
			c.Intensity,
			common.FormatPointsDelta(c.Points),
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatLeaderboard(ctx context.Context, entries []LeaderboardEntry, names NameResolver) string {
	if len(entries) == 0 {
		return "🏆 Пока никто не выполнил ни одного упражнения"
	}
	var sb strings.Builder
	sb.WriteString("🏆 Таблица лидеров:\n\n")
	for i, e := range entries {
		name := fmt.Sprintf("id%d", e.UserID)
		if names != nil {
			name = names.DisplayName(ctx, e.UserID)
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %s, серия %d\n", i+1, name, common.FormatPoints(e.Score), e.StreakDays))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
