// Package streak — penalties.go считает штрафы за пропущенные дни.
package streak

// Штраф за i-й пропущенный день (с нуля): penaltyStep * (1 + i) → 5, 10, 15, 20, ...
const penaltyStep = 5

// ApplyPenalties вычитает штрафы за missedDays пропущенных дней.
// Каждый шаг обрезается по нулю: если счёт упал до 0, он так и остаётся 0.
//
// Пример:
//
//	ApplyPenalties(100, 3) → 100 - 5 - 10 - 15 = 70
func ApplyPenalties(score, missedDays int) int {
	for i := 0; i < missedDays; i++ {
		score -= penaltyStep * (1 + i)
		if score < 0 {
			score = 0
		}
	}
	return score
}

// missedDays возвращает число пропущенных дней между последним выполнением и today.
// Сегодня и вчера — льготный период, за них штрафа нет.
func missedDays(last, today Date) int {
	if last.IsZero() {
		return 0
	}
	gap := DaysBetween(last, today)
	if gap <= 1 {
		return 0
	}
	return gap - 1
}

// CurrentDisplayScore возвращает счёт с учётом ещё не списанных штрафов.
// Состояние не меняется: это значение только для показа.
func CurrentDisplayScore(state LedgerState, today Date) int {
	if state.LastCompletedDate.IsZero() {
		return 0
	}
	return ApplyPenalties(state.Score, missedDays(state.LastCompletedDate, today))
}
