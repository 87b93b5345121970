// Package reminders отправляет ежедневные напоминания о тренировке.
// models.go описывает настройки напоминаний и разбор времени ЧЧ:ММ.
package reminders

import (
	"fmt"
	"strings"
	"time"

	"serotonyl.ru/exercise-bot/internal/common"
)

const clockLayout = "15:04"

// Settings — настройки напоминаний одного пользователя (таблица reminder_settings).
type Settings struct {
	UserID     int64      `db:"user_id"`
	Enabled    bool       `db:"enabled"`
	RemindAt   string     `db:"remind_at"`    // "ЧЧ:ММ" в часовом поясе приложения
	LastSentOn *time.Time `db:"last_sent_on"` // Дата последнего напоминания (nil — ещё не было)
	UpdatedAt  time.Time  `db:"updated_at"`
}

// sentOn сообщает, отправлялось ли напоминание в день today ("2006-01-02").
func (s *Settings) sentOn(today string) bool {
	return s.LastSentOn != nil && common.DateISO(*s.LastSentOn) == today
}

// ParseClock проверяет время "ЧЧ:ММ" и приводит его к виду с ведущими нулями.
// "9:05" → "09:05". Всё остальное — common.ErrBadReminderTime.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return "", fmt.Errorf("%q: %w", s, common.ErrBadReminderTime)
	}
	return t.Format(clockLayout), nil
}
