// Package bot содержит главный модуль бота — запуск polling, фильтрацию
// и маршрутизацию команд по обработчикам фич.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/bot/filters"
	"serotonyl.ru/exercise-bot/internal/bot/middleware"
	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/features/admin"
	"serotonyl.ru/exercise-bot/internal/features/members"
	"serotonyl.ru/exercise-bot/internal/features/reminders"
	"serotonyl.ru/exercise-bot/internal/features/streak"
	"serotonyl.ru/exercise-bot/internal/metrics"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	metrics *metrics.Metrics

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService   *members.Service
	memberHandler   *members.Handler
	streakHandler   *streak.Handler
	reminderHandler *reminders.Handler
	adminHandler    *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	m *metrics.Metrics,
	memberService *members.Service,
	memberHandler *members.Handler,
	streakHandler *streak.Handler,
	reminderHandler *reminders.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:             api,
		cfg:             cfg,
		metrics:         m,
		chatFilter:      chatFilter,
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:   memberService,
		memberHandler:   memberHandler,
		streakHandler:   streakHandler,
		reminderHandler: reminderHandler,
		adminHandler:    adminHandler,
		parser:          NewCommandParser(),
		inflight:        make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram. Возвращается после отмены ctx,
// дождавшись обработчиков, которые уже выполняются.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	defer b.rateLimiter.Close()
	defer b.drain()

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// drain ждёт, пока освободятся все слоты inflight.
func (b *Bot) drain() {
	for i := 0; i < cap(b.inflight); i++ {
		b.inflight <- struct{}{}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(func(any) { b.metrics.Panic() })

	message := update.Message
	if message == nil {
		return
	}

	// Вступление в группу — регистрируем участников
	if len(message.NewChatMembers) > 0 {
		if message.Chat != nil && b.chatFilter.IsGroup(message.Chat.ID) {
			b.memberHandler.HandleNewChatMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		b.metrics.RateLimited()
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	private := message.Chat.IsPrivate()

	// В личке сначала админ-панель: она перехватывает ввод пароля и шаги диалога
	if private && b.adminHandler.HandleAdminMessage(ctx, chatID, userID, message.Text) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand && private {
		// Кнопки клавиатуры приходят обычным текстом
		cmd, args, isCommand = b.parser.ParseBare(message.Text)
	}
	if !isCommand {
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	if !b.routeCommand(ctx, chatID, userID, private, cmd, args) && private {
		b.sendMessage(chatID, "Не знаю такой команды. Напиши /help")
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
// Возвращает false, если команда неизвестна.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, private bool, cmd string, args []string) bool {
	switch cmd {
	case "start", "help", "помощь":
		b.sendHelp(chatID, private)

	case "login":
		if private {
			b.adminHandler.HandleAdminMessage(ctx, chatID, userID, strings.TrimSpace("/login "+strings.Join(args, " ")))
		}

	case "упражнение", "exercise":
		b.streakHandler.HandleExercise(ctx, chatID, userID)

	case "сделал", "сделала", "done":
		b.streakHandler.HandleDone(ctx, chatID, userID)

	case "другое", "another":
		b.streakHandler.HandleAnother(ctx, chatID, userID)

	case "сложнее", "harder":
		b.streakHandler.HandleAdjust(ctx, chatID, userID, streak.Increase)

	case "легче", "easier":
		b.streakHandler.HandleAdjust(ctx, chatID, userID, streak.Decrease)

	case "очки", "score":
		b.streakHandler.HandleScore(ctx, chatID, userID)

	case "история", "history":
		b.streakHandler.HandleHistory(ctx, chatID, userID)

	case "топ", "top":
		b.streakHandler.HandleTop(ctx, chatID)

	case "напоминание", "remind":
		if b.cfg.FeatureRemindersEnabled {
			b.reminderHandler.HandleReminder(ctx, chatID, userID, args)
		} else {
			b.sendMessage(chatID, "⏰ Напоминания временно отключены")
		}

	default:
		return false
	}
	return true
}

// sendHelp отправляет список команд, а в личке ещё и клавиатуру.
func (b *Bot) sendHelp(chatID int64, private bool) {
	msg := tgbotapi.NewMessage(chatID, helpText(b.cfg.FeatureRemindersEnabled))
	if private {
		msg.ReplyMarkup = mainKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func helpText(reminders bool) string {
	var sb strings.Builder
	sb.WriteString("🏋️ Каждый день — одно небольшое упражнение.\n\n")
	sb.WriteString("!упражнение — текущее упражнение и счёт\n")
	sb.WriteString("!сделал — отметить выполнение\n")
	sb.WriteString("!другое — выбрать другое упражнение\n")
	sb.WriteString("!сложнее / !легче — поменять сложность\n")
	sb.WriteString("!очки — счёт и серия\n")
	sb.WriteString("!история — последние выполнения\n")
	sb.WriteString("!топ — таблица лидеров\n")
	if reminders {
		sb.WriteString("!напоминание ЧЧ:ММ | выкл — ежедневное напоминание\n")
	}
	sb.WriteString("\nЗа каждый пропущенный день при следующем выполнении списываются очки, и чем дольше пропуск, тем больше.")
	return sb.String()
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Упражнение"),
			tgbotapi.NewKeyboardButton("Сделал"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Легче"),
			tgbotapi.NewKeyboardButton("Другое"),
			tgbotapi.NewKeyboardButton("Сложнее"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Очки"),
			tgbotapi.NewKeyboardButton("Топ"),
		),
	)
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю в личку (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
		return err
	}
	log.WithField("user_id", userID).Debug("message sent")
	return nil
}
