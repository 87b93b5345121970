// Package streak — picker.go выбирает упражнение и его интенсивность.
package streak

import (
	"fmt"

	"serotonyl.ru/exercise-bot/internal/common"
)

// RandomSource — источник случайности. *rand.Rand из math/rand подходит.
// В тестах подставляется детерминированная реализация.
type RandomSource interface {
	Intn(n int) int
}

// Mode — стратегия выбора упражнения из каталога.
type Mode interface {
	pickIndex(n int, rnd RandomSource) int
}

type deterministicMode struct {
	date Date
}

func (m deterministicMode) pickIndex(n int, _ RandomSource) int {
	idx := m.date.EpochMillis() % int64(n)
	if idx < 0 {
		idx += int64(n)
	}
	return int(idx)
}

type randomMode struct{}

func (randomMode) pickIndex(n int, rnd RandomSource) int {
	return rnd.Intn(n)
}

// Deterministic — упражнение дня: одно и то же для одной даты.
func Deterministic(date Date) Mode {
	return deterministicMode{date: date}
}

// Random — случайное упражнение (кнопка "другое").
func Random() Mode {
	return randomMode{}
}

// ExerciseInstance — конкретное упражнение с выбранной интенсивностью.
type ExerciseInstance struct {
	Index     int
	Exercise  Exercise
	Intensity int
}

// Current возвращает сохраняемое представление экземпляра.
func (i ExerciseInstance) Current() CurrentExercise {
	return CurrentExercise{ExerciseID: i.Exercise.ID, Intensity: i.Intensity}
}

// Describe возвращает текст вида "Отжимания — 20 повторений".
func (i ExerciseInstance) Describe() string {
	unit := common.PluralizeReps(i.Intensity)
	if i.Exercise.Unit == UnitSeconds {
		unit = common.PluralizeSeconds(i.Intensity)
	}
	return fmt.Sprintf("%s — %d %s", i.Exercise.Name, i.Intensity, unit)
}

// rollIntensity выбирает интенсивность равномерно в [r.Min, r.Max].
func rollIntensity(r IntensityRange, rnd RandomSource) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rnd.Intn(r.Max-r.Min+1)
}

// PickExercise выбирает упражнение по стратегии mode и бросает интенсивность
// в пределах действующего диапазона (настройка пользователя или дефолт каталога).
// Каталог должен быть непустым (проверяется Catalog.Validate при загрузке).
func PickExercise(catalog Catalog, overrides map[string]IntensityRange, mode Mode, rnd RandomSource) ExerciseInstance {
	idx := mode.pickIndex(len(catalog), rnd)
	e := catalog[idx]
	return ExerciseInstance{
		Index:     idx,
		Exercise:  e,
		Intensity: rollIntensity(EffectiveRange(e, overrides), rnd),
	}
}

// Reroll заново бросает интенсивность упражнения id в актуальных границах.
// Вызывается после успешного изменения сложности.
func Reroll(catalog Catalog, overrides map[string]IntensityRange, id string, rnd RandomSource) (ExerciseInstance, error) {
	idx := catalog.Index(id)
	if idx < 0 {
		return ExerciseInstance{}, fmt.Errorf("%w: %s", common.ErrUnknownExercise, id)
	}
	e := catalog[idx]
	return ExerciseInstance{
		Index:     idx,
		Exercise:  e,
		Intensity: rollIntensity(EffectiveRange(e, overrides), rnd),
	}, nil
}

// Resolve восстанавливает экземпляр из сохранённого CurrentExercise.
// false — упражнение исчезло из каталога (например, каталог заменили).
func Resolve(catalog Catalog, cur CurrentExercise) (ExerciseInstance, bool) {
	idx := catalog.Index(cur.ExerciseID)
	if idx < 0 || cur.Intensity < 1 {
		return ExerciseInstance{}, false
	}
	return ExerciseInstance{Index: idx, Exercise: catalog[idx], Intensity: cur.Intensity}, true
}

// DailyExercise возвращает упражнение дня без интенсивности (для напоминаний).
func DailyExercise(catalog Catalog, date Date) Exercise {
	return catalog[Deterministic(date).pickIndex(len(catalog), nil)]
}
