// Package members хранит участников: кто пользуется ботом и как их называть.
// models.go описывает структуры данных для работы с таблицей members.
package members

import "time"

// Member — пользователь бота.
// Запись создаётся при первом сообщении боту или при вступлении в групповой чат.
type Member struct {
	ID        int64     `db:"id"`         // Автоинкрементный ID записи в БД
	UserID    int64     `db:"user_id"`    // Telegram user ID (уникальный)
	Username  string    `db:"username"`   // @username (может быть пустым)
	FirstName string    `db:"first_name"` // Имя пользователя
	LastName  string    `db:"last_name"`  // Фамилия (может быть пустой)
	JoinedAt  time.Time `db:"joined_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Имя и @username в Telegram могут меняться, обновляем их при каждом визите.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	if name == "" {
		return "без имени"
	}
	return name
}

// changed сообщает, отличаются ли сохранённые данные от info.
func (m *Member) changed(info UpdateInfo) bool {
	return m.Username != info.Username || m.FirstName != info.FirstName || m.LastName != info.LastName
}
