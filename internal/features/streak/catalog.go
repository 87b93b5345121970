// Package streak — catalog.go описывает каталог упражнений.
// Каталог — фиксированный упорядоченный список: порядок важен, от него
// зависит упражнение дня.
package streak

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"serotonyl.ru/exercise-bot/internal/common"
)

// Unit — единица интенсивности упражнения.
type Unit string

const (
	UnitReps    Unit = "reps"    // Повторения
	UnitSeconds Unit = "seconds" // Секунды
)

// Step возвращает шаг изменения сложности для единицы.
func (u Unit) Step() int {
	if u == UnitSeconds {
		return 5
	}
	return 2
}

// Exercise — определение упражнения в каталоге.
type Exercise struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Unit    Unit           `yaml:"unit"`
	Default IntensityRange `yaml:"default"`
}

// Catalog — упорядоченный список упражнений.
type Catalog []Exercise

// DefaultCatalog — встроенный каталог.
// 19 упражнений: 19 взаимно просто с 86 400 000 (мс в сутках), поэтому
// упражнение дня (epochMillis mod len) перебирает весь каталог.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "jumping-jacks", Name: "Прыжки «звёздочка»", Unit: UnitReps, Default: IntensityRange{Min: 25, Max: 35}},
		{ID: "push-ups", Name: "Отжимания", Unit: UnitReps, Default: IntensityRange{Min: 15, Max: 25}},
		{ID: "squats", Name: "Приседания", Unit: UnitReps, Default: IntensityRange{Min: 12, Max: 20}},
		{ID: "plank", Name: "Планка", Unit: UnitSeconds, Default: IntensityRange{Min: 45, Max: 75}},
		{ID: "lunges", Name: "Выпады (на каждую ногу)", Unit: UnitReps, Default: IntensityRange{Min: 8, Max: 12}},
		{ID: "burpees", Name: "Бёрпи", Unit: UnitReps, Default: IntensityRange{Min: 10, Max: 15}},
		{ID: "sit-ups", Name: "Подъёмы корпуса", Unit: UnitReps, Default: IntensityRange{Min: 20, Max: 30}},
		{ID: "wall-sit", Name: "Стульчик у стены", Unit: UnitSeconds, Default: IntensityRange{Min: 25, Max: 40}},
		{ID: "mountain-climbers", Name: "Скалолаз", Unit: UnitReps, Default: IntensityRange{Min: 16, Max: 24}},
		{ID: "tricep-dips", Name: "Обратные отжимания", Unit: UnitReps, Default: IntensityRange{Min: 8, Max: 12}},
		{ID: "high-knees", Name: "Бег с высоким подниманием бедра", Unit: UnitReps, Default: IntensityRange{Min: 12, Max: 18}},
		{ID: "bicycle-crunches", Name: "Велосипед", Unit: UnitReps, Default: IntensityRange{Min: 16, Max: 24}},
		{ID: "jump-squats", Name: "Приседания с выпрыгиванием", Unit: UnitReps, Default: IntensityRange{Min: 8, Max: 12}},
		{ID: "leg-raises", Name: "Подъёмы ног лёжа", Unit: UnitReps, Default: IntensityRange{Min: 12, Max: 18}},
		{ID: "butt-kicks", Name: "Захлёст голени", Unit: UnitReps, Default: IntensityRange{Min: 25, Max: 35}},
		{ID: "pike-push-ups", Name: "Отжимания в пике", Unit: UnitReps, Default: IntensityRange{Min: 8, Max: 14}},
		{ID: "russian-twists", Name: "Русские скручивания", Unit: UnitReps, Default: IntensityRange{Min: 16, Max: 24}},
		{ID: "step-ups", Name: "Зашагивания на опору", Unit: UnitReps, Default: IntensityRange{Min: 12, Max: 18}},
		{ID: "superman-hold", Name: "Удержание «супермен»", Unit: UnitSeconds, Default: IntensityRange{Min: 45, Max: 75}},
	}
}

// Index возвращает позицию упражнения с данным id или -1.
func (c Catalog) Index(id string) int {
	for i, e := range c {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Find возвращает упражнение по id.
func (c Catalog) Find(id string) (Exercise, bool) {
	i := c.Index(id)
	if i < 0 {
		return Exercise{}, false
	}
	return c[i], true
}

// EffectiveRange возвращает границы с учётом пользовательской настройки.
func EffectiveRange(e Exercise, overrides map[string]IntensityRange) IntensityRange {
	if r, ok := overrides[e.ID]; ok {
		return r
	}
	return e.Default
}

// Validate проверяет каталог: непустой, уникальные id, известные единицы,
// 1 <= min <= max у каждого упражнения.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: каталог пуст", common.ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c))
	for i, e := range c {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("%w: у упражнения #%d нет id или названия", common.ErrInvalidCatalog, i+1)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: повторяется id %q", common.ErrInvalidCatalog, e.ID)
		}
		seen[e.ID] = true
		if e.Unit != UnitReps && e.Unit != UnitSeconds {
			return fmt.Errorf("%w: неизвестная единица %q у %q", common.ErrInvalidCatalog, e.Unit, e.ID)
		}
		if e.Default.Min < 1 || e.Default.Min > e.Default.Max {
			return fmt.Errorf("%w: некорректный диапазон %d-%d у %q", common.ErrInvalidCatalog, e.Default.Min, e.Default.Max, e.ID)
		}
	}
	return nil
}

// catalogFile — формат YAML-файла каталога.
type catalogFile struct {
	Exercises Catalog `yaml:"exercises"`
}

// ParseCatalog разбирает каталог из YAML.
//
// Пример:
//
//	exercises:
//	  - id: push-ups
//	    name: Отжимания
//	    unit: reps
//	    default: {min: 15, max: 25}
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCatalog, err)
	}
	if err := f.Exercises.Validate(); err != nil {
		return nil, err
	}
	return f.Exercises, nil
}

// LoadCatalog читает каталог из файла. Пустой путь — встроенный каталог.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог %s: %w", path, err)
	}
	return ParseCatalog(data)
}
