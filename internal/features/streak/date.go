// Package streak — date.go описывает календарную дату без времени суток.
// Журнал очков работает только с датами вида 2006-01-02: время и часовой
// пояс остаются на стороне того, кто передаёт "сегодня".
package streak

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	msPerDay   = int64(24 * time.Hour / time.Millisecond)
)

// Date — календарная дата. Внутри хранится полночь UTC этой даты,
// поэтому разница между датами всегда кратна суткам.
// Нулевое значение означает "даты нет" (в JSON — null).
type Date struct {
	t time.Time
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("некорректная дата %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustDate — ParseDate для констант и тестов.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf возвращает календарную дату момента t в его собственном часовом поясе.
func DateOf(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// IsZero сообщает, что дата не задана.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Equal сравнивает две даты.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// AddDays сдвигает дату на n дней (n может быть отрицательным).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Time возвращает полночь UTC этой даты.
func (d Date) Time() time.Time {
	return d.t
}

// EpochMillis — миллисекунды от начала эпохи до полуночи UTC этой даты.
func (d Date) EpochMillis() int64 {
	return d.t.UnixMilli()
}

// String возвращает дату в формате YYYY-MM-DD (пустую строку для нулевой даты).
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON кодирует дату строкой "YYYY-MM-DD" или null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON принимает строку "YYYY-MM-DD" или null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("дата должна быть строкой: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween возвращает абсолютную разницу между датами в целых днях.
func DaysBetween(a, b Date) int {
	diff := b.EpochMillis() - a.EpochMillis()
	if diff < 0 {
		diff = -diff
	}
	return int(diff / msPerDay)
}
