// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultTimezone — часовой пояс по умолчанию.
const DefaultTimezone = "Europe/Moscow"

// Политики повторного выполнения упражнения в течение одного дня.
const (
	PolicyDiminishing = "diminishing" // Можно сколько угодно, очки убывают 10 → 5 → 2
	PolicySingle      = "single"      // Одно выполнение в день, повтор отклоняется
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Групповой чат, в котором бот тоже отвечает. 0 — только личные сообщения.
	GroupChatID int64 `envconfig:"GROUP_CHAT_ID" default:"0"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"exercise_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Часовой пояс, в котором считается "сегодня" и срабатывают напоминания
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Ledger ---
	LedgerCompletionPolicy string `envconfig:"LEDGER_COMPLETION_POLICY" default:"diminishing"`
	// YAML с каталогом упражнений. Пусто — встроенный каталог.
	CatalogPath string `envconfig:"CATALOG_PATH" default:""`

	// --- Reminders ---
	ReminderDefaultTime string `envconfig:"REMINDER_DEFAULT_TIME" default:"09:00"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Metrics ---
	// Адрес HTTP-сервера с /metrics и /healthz. Пусто — сервер не поднимается.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// --- Feature Flags ---
	FeatureRemindersEnabled bool `envconfig:"FEATURE_REMINDERS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс приложения. Validate уже проверил имя,
// поэтому ошибка здесь возможна только для конфига, собранного в обход Load.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadLocation загружает часовой пояс. Без tzdata в образе UTC+3 подставляется
// только для Москвы по умолчанию; опечатка в имени пояса — ошибка.
func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone("MSK", 3*60*60), nil
	}
	return nil, err
}

// SinglePerDay сообщает, включена ли политика "одно выполнение в день".
func (c *Config) SinglePerDay() bool {
	return c.LedgerCompletionPolicy == PolicySingle
}

// IsAdmin проверяет, указан ли пользователь в ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	switch c.LedgerCompletionPolicy {
	case PolicyDiminishing, PolicySingle:
	default:
		return fmt.Errorf("LEDGER_COMPLETION_POLICY должен быть %q или %q", PolicyDiminishing, PolicySingle)
	}
	if _, err := loadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q не найден: %w", c.AppTimezone, err)
	}
	if _, err := time.Parse("15:04", c.ReminderDefaultTime); err != nil {
		return fmt.Errorf("REMINDER_DEFAULT_TIME должен быть в формате ЧЧ:ММ: %w", err)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
