// Package common — pluralize.go содержит вспомогательные функции
// для форматирования изменений счёта со знаком.
package common

import "fmt"

// FormatPointsDelta создаёт строку вида "+10 очков" или "-15 очков".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatPointsDelta(10)  → "+10 очков"
//	FormatPointsDelta(-15) → "-15 очков"
//	FormatPointsDelta(2)   → "+2 очка"
func FormatPointsDelta(delta int) string {
	if delta >= 0 {
		return fmt.Sprintf("+%d %s", delta, PluralizePoints(delta))
	}
	return fmt.Sprintf("%d %s", delta, PluralizePoints(delta))
}
