// Package streak — codec.go сериализует журнал и проверяет его при загрузке.
// Проверка "всё или ничего": если хоть одно поле некорректно, используется
// состояние по умолчанию, частично испорченным данным не доверяем.
package streak

import (
	"bytes"
	"encoding/json"
	"fmt"

	"serotonyl.ru/exercise-bot/internal/common"
)

// storedLedger — то, что может лежать в базе, включая старые версии.
// Указатели отличают "поле отсутствует" от нуля.
type storedLedger struct {
	Score                   *int                      `json:"score"`
	StreakDays              *int                      `json:"streakDays"`
	LastCompletedDate       Date                      `json:"lastCompletedDate"`
	ExercisesCompletedToday *int                      `json:"exercisesCompletedToday"`
	ExerciseRangeOverrides  map[string]IntensityRange `json:"exerciseRangeOverrides"`

	// Первая версия хранила серию под этим именем.
	DaysCompleted *int `json:"daysCompleted"`
}

// EncodeLedger кодирует состояние в JSON для колонки ledgers.state.
func EncodeLedger(state LedgerState) ([]byte, error) {
	if state.ExerciseRangeOverrides == nil {
		state.ExerciseRangeOverrides = map[string]IntensityRange{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования журнала: %w", err)
	}
	return data, nil
}

// DecodeLedger разбирает сохранённое состояние.
//
// Пустые данные (первый запуск) → DefaultLedger() без ошибки.
// Любая ошибка разбора или проверки → DefaultLedger() и ошибка,
// оборачивающая common.ErrCorruptedLedger.
func DecodeLedger(data []byte) (LedgerState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return DefaultLedger(), nil
	}

	var raw storedLedger
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return DefaultLedger(), fmt.Errorf("%w: %v", common.ErrCorruptedLedger, err)
	}

	state := migrate(raw)
	if err := validateLedger(state); err != nil {
		return DefaultLedger(), fmt.Errorf("%w: %v", common.ErrCorruptedLedger, err)
	}
	return state, nil
}

// migrate переводит сохранённую запись любой версии в LedgerState.
// Все значения по умолчанию проставляются здесь, а не по месту использования.
func migrate(raw storedLedger) LedgerState {
	state := DefaultLedger()
	if raw.Score != nil {
		state.Score = *raw.Score
	}
	switch {
	case raw.StreakDays != nil:
		state.StreakDays = *raw.StreakDays
	case raw.DaysCompleted != nil:
		state.StreakDays = *raw.DaysCompleted
	}
	state.LastCompletedDate = raw.LastCompletedDate
	if raw.ExercisesCompletedToday != nil {
		state.ExercisesCompletedToday = *raw.ExercisesCompletedToday
	} else if !raw.LastCompletedDate.IsZero() {
		// В первой версии было не больше одного выполнения в день.
		state.ExercisesCompletedToday = 1
	}
	for id, r := range raw.ExerciseRangeOverrides {
		state.ExerciseRangeOverrides[id] = r
	}
	return state
}

func validateLedger(s LedgerState) error {
	if s.Score < 0 {
		return fmt.Errorf("отрицательный счёт %d", s.Score)
	}
	if s.StreakDays < 0 {
		return fmt.Errorf("отрицательная серия %d", s.StreakDays)
	}
	if s.ExercisesCompletedToday < 0 {
		return fmt.Errorf("отрицательный счётчик дня %d", s.ExercisesCompletedToday)
	}
	for id, r := range s.ExerciseRangeOverrides {
		if id == "" {
			return fmt.Errorf("пустой id упражнения в настройках")
		}
		if r.Min < minIntensityFloor || r.Min > r.Max {
			return fmt.Errorf("некорректный диапазон %d-%d у %q", r.Min, r.Max, id)
		}
	}
	return nil
}

// EncodeCurrent кодирует текущее упражнение (nil → SQL NULL).
func EncodeCurrent(cur *CurrentExercise) ([]byte, error) {
	if cur == nil {
		return nil, nil
	}
	data, err := json.Marshal(cur)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования упражнения: %w", err)
	}
	return data, nil
}

// DecodeCurrent разбирает текущее упражнение. Мусор считается отсутствием.
func DecodeCurrent(data []byte) *CurrentExercise {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var cur CurrentExercise
	if err := json.Unmarshal(trimmed, &cur); err != nil || cur.ExerciseID == "" {
		return nil
	}
	return &cur
}
