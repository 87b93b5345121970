// Package streak — ledger.go реализует выполнение упражнения: переход
// состояния журнала и начисление очков.
package streak

import "serotonyl.ru/exercise-bot/internal/common"

// Policy определяет, что делать с повторным выполнением в тот же день.
type Policy int

const (
	// PolicyDiminishing — повтор разрешён, очки убывают: 10 → 5 → 2 → 2 ...
	PolicyDiminishing Policy = iota
	// PolicySinglePerDay — одно выполнение в день, повтор отклоняется.
	PolicySinglePerDay
)

// PointsForPosition возвращает очки за выполнение по его номеру в дне (с нуля).
func PointsForPosition(completedToday int) int {
	switch {
	case completedToday <= 0:
		return 10
	case completedToday == 1:
		return 5
	default:
		return 2
	}
}

// Complete записывает одно выполнение упражнения за дату today.
//
// Алгоритм:
//  1. Первое выполнение нового дня: сбрасываем счётчик дня, списываем
//     накопившиеся штрафы в сохраняемый счёт, увеличиваем серию.
//  2. Начисляем очки по номеру выполнения в дне.
//
// При PolicySinglePerDay повтор в тот же день возвращает
// common.ErrAlreadyCompletedToday и исходное состояние.
func Complete(state LedgerState, today Date, policy Policy) (LedgerState, int, error) {
	sameDay := !state.LastCompletedDate.IsZero() && state.LastCompletedDate.Equal(today)
	if sameDay && policy == PolicySinglePerDay {
		return state, 0, common.ErrAlreadyCompletedToday
	}

	next := state.clone()
	if !sameDay {
		next.ExercisesCompletedToday = 0
		// Штраф "запекается" в счёт: после этого сохранённое значение
		// совпадает с тем, что пользователь видел на экране.
		next.Score = ApplyPenalties(next.Score, missedDays(next.LastCompletedDate, today))
		next.StreakDays++
		next.LastCompletedDate = today
	}

	points := PointsForPosition(next.ExercisesCompletedToday)
	next.Score += points
	next.ExercisesCompletedToday++

	return next, points, nil
}
