// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с датами.
package common

import (
	"fmt"
	"time"
)

// pluralize выбирает форму слова для числа n по правилам русского языка.
//
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
func PluralizeDays(n int) string {
	return pluralize(n, "день", "дня", "дней")
}

// PluralizePoints возвращает правильную форму слова «очко».
//
// Примеры:
//
//	PluralizePoints(1)  → "очко"
//	PluralizePoints(2)  → "очка"
//	PluralizePoints(10) → "очков"
func PluralizePoints(n int) string {
	return pluralize(n, "очко", "очка", "очков")
}

// PluralizeReps возвращает правильную форму слова «повторение».
func PluralizeReps(n int) string {
	return pluralize(n, "повторение", "повторения", "повторений")
}

// PluralizeSeconds возвращает правильную форму слова «секунда».
func PluralizeSeconds(n int) string {
	return pluralize(n, "секунда", "секунды", "секунд")
}

// FormatPoints форматирует очки в читабельную строку.
// Пример: FormatPoints(45) → "45 очков"
func FormatPoints(points int) string {
	return fmt.Sprintf("%d %s", points, PluralizePoints(points))
}

// DateISO возвращает дату t в формате 2006-01-02 в её часовом поясе.
// Именно эту строку ядро получает как "сегодня".
func DateISO(t time.Time) string {
	return t.Format("2006-01-02")
}
