// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/bot"
	"serotonyl.ru/exercise-bot/internal/bot/filters"
	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/db/postgres"
	"serotonyl.ru/exercise-bot/internal/features/admin"
	"serotonyl.ru/exercise-bot/internal/features/members"
	"serotonyl.ru/exercise-bot/internal/features/reminders"
	"serotonyl.ru/exercise-bot/internal/features/streak"
	"serotonyl.ru/exercise-bot/internal/httpserver"
	"serotonyl.ru/exercise-bot/internal/jobs"
	"serotonyl.ru/exercise-bot/internal/metrics"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *httpserver.Server // nil, если METRICS_ADDR пуст
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Каталог упражнений ===
	// Проверяем до подключения к БД: с битым каталогом запускаться незачем.
	catalog, err := streak.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки каталога: %w", err)
	}
	log.WithField("exercises", len(catalog)).Info("Каталог упражнений загружен")

	// === 2. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	m := metrics.New()

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool)
	streakRepo := streak.NewRepository(pool)
	reminderRepo := reminders.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 5. Сервисы ===
	memberService := members.NewService(memberRepo)
	streakService := streak.NewService(streakRepo, catalog, cfg, m, rand.New(rand.NewSource(time.Now().UnixNano())))
	reminderService := reminders.NewService(reminderRepo, streakService, cfg, m)
	adminService := admin.NewService(adminRepo, cfg)

	// === 6. Обработчики ===
	memberHandler := members.NewHandler(memberService)
	streakHandler := streak.NewHandler(streakService, botAPI, memberService)
	reminderHandler := reminders.NewHandler(reminderService, botAPI)
	adminHandler := admin.NewHandler(adminService, streakService, memberService, botAPI)

	// === 7. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.GroupChatID)

	// === 8. Собираем бота ===
	b := bot.New(
		botAPI, cfg, m,
		memberService, memberHandler,
		streakHandler,
		reminderHandler,
		adminHandler,
		chatFilter,
	)

	// === 9. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg.Location(), reminderService, adminService, b.SendMessageToUser, cfg.FeatureRemindersEnabled)

	// === 10. Служебный HTTP ===
	var httpSrv *httpserver.Server
	if cfg.MetricsAddr != "" {
		httpSrv = httpserver.New(cfg.MetricsAddr, m.Handler(), pool)
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		HTTP:      httpSrv,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}
