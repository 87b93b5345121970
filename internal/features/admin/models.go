// Package admin реализует админ-панель с парольной аутентификацией.
// models.go описывает структуры сессий, попыток входа и состояния диалога.
package admin

import "time"

// AdminSession — активная сессия администратора.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// AdminState — состояние диалога с админом (конечный автомат).
// Сброс прогресса идёт по шагам: выбор участника → подтверждение.
type AdminState struct {
	State     string      // Текущее состояние ("", "awaiting_password", "reset_select", ...)
	Data      interface{} // Данные шага (список участников, выбранный участник)
	ExpiresAt time.Time   // Когда состояние истекает
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
	StateResetSelect      = "reset_select"      // Ждём номер участника
	StateResetConfirm     = "reset_confirm"     // Ждём "да" для сброса
)

// Кнопки клавиатуры админ-панели
const (
	ButtonReset  = "Сбросить прогресс"
	ButtonStats  = "Статистика"
	ButtonLogout = "Выйти"
)

const (
	sessionTTL     = 24 * time.Hour
	stateTTL       = 5 * time.Minute
	attemptsWindow = time.Hour
	maxAttempts    = 3
)
