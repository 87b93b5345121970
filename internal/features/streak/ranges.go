// Package streak — ranges.go меняет пользовательскую сложность упражнений.
package streak

import (
	"fmt"

	"serotonyl.ru/exercise-bot/internal/common"
)

// Direction — направление изменения сложности.
type Direction int

const (
	Increase Direction = iota // Сложнее
	Decrease                  // Легче
)

// String нужен для логов и меток метрик.
func (d Direction) String() string {
	if d == Decrease {
		return "decrease"
	}
	return "increase"
}

// Абсолютный минимум интенсивности.
const minIntensityFloor = 1

// AdjustExerciseRange сдвигает обе границы упражнения на шаг его единицы
// (2 повторения или 5 секунд).
//
// Уменьшение отклоняется с common.ErrInvalidRange, если любая граница стала бы
// меньше 1, увеличение — с common.ErrRangeTooHigh при переполнении int.
// Дефолт каталога нижней границей не считается: диапазон может сколько
// угодно "гулять" вверх и вниз.
//
// Если новые границы совпали с дефолтом каталога, настройка удаляется.
// При любой ошибке возвращается исходное состояние.
func AdjustExerciseRange(state LedgerState, exerciseID string, direction Direction, catalog Catalog) (LedgerState, error) {
	e, ok := catalog.Find(exerciseID)
	if !ok {
		return state, fmt.Errorf("%w: %s", common.ErrUnknownExercise, exerciseID)
	}

	step := e.Unit.Step()
	if direction == Decrease {
		step = -step
	}

	current := EffectiveRange(e, state.ExerciseRangeOverrides)
	updated := IntensityRange{Min: current.Min + step, Max: current.Max + step}
	if direction == Increase && updated.Max < current.Max {
		// переполнение int
		return state, common.ErrRangeTooHigh
	}
	if updated.Min < minIntensityFloor || updated.Max < minIntensityFloor {
		return state, common.ErrInvalidRange
	}

	next := state.clone()
	if updated == e.Default {
		delete(next.ExerciseRangeOverrides, exerciseID)
	} else {
		next.ExerciseRangeOverrides[exerciseID] = updated
	}
	return next, nil
}
