// Package streak управляет журналом очков: счётом, серией дней,
// штрафами за пропуски и сложностью упражнений.
// models.go описывает структуры данных журнала.
package streak

// LedgerState — сохраняемое состояние журнала одного пользователя.
// JSON-ключи фиксированы: этот объект целиком лежит в колонке ledgers.state.
type LedgerState struct {
	Score                   int                       `json:"score"`                   // Накопленные очки (>= 0)
	StreakDays              int                       `json:"streakDays"`              // Дней хотя бы с одним выполнением
	LastCompletedDate       Date                      `json:"lastCompletedDate"`       // Дата последнего выполнения (null — ни разу)
	ExercisesCompletedToday int                       `json:"exercisesCompletedToday"` // Выполнений за lastCompletedDate
	ExerciseRangeOverrides  map[string]IntensityRange `json:"exerciseRangeOverrides"`  // Пользовательская сложность по id упражнения
}

// IntensityRange — границы интенсивности (повторения или секунды), включительно.
type IntensityRange struct {
	Min int `json:"minIntensity" yaml:"min"`
	Max int `json:"maxIntensity" yaml:"max"`
}

// CurrentExercise — упражнение, которое сейчас показано пользователю.
// Хранится рядом с журналом (ledgers.current_exercise), но не внутри него.
type CurrentExercise struct {
	ExerciseID string `json:"exerciseId"`
	Intensity  int    `json:"intensity"`
}

// DefaultLedger возвращает состояние первого запуска: всё по нулям.
func DefaultLedger() LedgerState {
	return LedgerState{ExerciseRangeOverrides: map[string]IntensityRange{}}
}

// clone возвращает копию состояния, не разделяющую карту с оригиналом.
func (s LedgerState) clone() LedgerState {
	out := s
	out.ExerciseRangeOverrides = make(map[string]IntensityRange, len(s.ExerciseRangeOverrides))
	for id, r := range s.ExerciseRangeOverrides {
		out.ExerciseRangeOverrides[id] = r
	}
	return out
}

// CompletedTodayCount возвращает число выполнений именно за today.
// Если последнее выполнение было в другой день, счётчик не действует.
func (s LedgerState) CompletedTodayCount(today Date) int {
	if s.LastCompletedDate.IsZero() || !s.LastCompletedDate.Equal(today) {
		return 0
	}
	return s.ExercisesCompletedToday
}
