// Package streak — service.go связывает чистые функции журнала с хранилищем.
// Каждое действие пользователя: загрузить → перейти в новое состояние → сохранить.
package streak

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/common"
	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/metrics"
)

// Store — хранилище журналов. Реализуется Repository.
type Store interface {
	Load(ctx context.Context, userID int64) (*Record, bool, error)
	Save(ctx context.Context, userID int64, state, current []byte) error
	SaveCompletion(ctx context.Context, userID int64, state, current []byte, c *Completion) error
	RecentCompletions(ctx context.Context, userID int64, limit int) ([]*Completion, error)
	ListAll(ctx context.Context) ([]*Record, error)
	Delete(ctx context.Context, userID int64) error
}

// Overview — всё, что показываем по команде !упражнение.
type Overview struct {
	DisplayScore   int              // Счёт с учётом несписанных штрафов
	PendingPenalty int              // Сколько спишется при следующем выполнении
	StreakDays     int              // Дней с выполнением
	CompletedToday int              // Выполнений сегодня
	Exercise       ExerciseInstance // Текущее упражнение
	Motivation     string           // Фраза дня
}

// CompletionResult — итог команды !сделал.
type CompletionResult struct {
	AlreadyCompleted bool // Политика "одно в день" отклонила повтор
	Points           int  // Начислено очков
	Penalty          int  // Списано штрафа за пропуски
	Position         int  // Номер выполнения за сегодня (с единицы)
	Score            int
	StreakDays       int
	Exercise         ExerciseInstance
	Message          string // Похвала
}

// AdjustResult — итог изменения сложности.
type AdjustResult struct {
	Exercise ExerciseInstance
	Range    IntensityRange
}

// LeaderboardEntry — строка таблицы лидеров.
type LeaderboardEntry struct {
	UserID     int64
	Score      int
	StreakDays int
}

// Service управляет журналами пользователей.
type Service struct {
	store   Store
	catalog Catalog
	policy  Policy
	metrics *metrics.Metrics
	rnd     RandomSource
	loc     *time.Location
	now     func() time.Time

	// Один писатель на пользователя: бот обрабатывает апдейты параллельно.
	locksMu sync.Mutex
	locks   map[int64]*userLock
	rndMu   sync.Mutex
}

// NewService создаёт сервис журналов.
func NewService(store Store, catalog Catalog, cfg *config.Config, m *metrics.Metrics, rnd RandomSource) *Service {
	policy := PolicyDiminishing
	if cfg.SinglePerDay() {
		policy = PolicySinglePerDay
	}
	return &Service{
		store:   store,
		catalog: catalog,
		policy:  policy,
		metrics: m,
		rnd:     rnd,
		loc:     cfg.Location(),
		now:     time.Now,
		locks:   make(map[int64]*userLock),
	}
}

// Catalog возвращает каталог упражнений.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Today возвращает "сегодня" в часовом поясе приложения.
func (s *Service) Today() Date {
	return DateOf(s.now().In(s.loc))
}

// userLock — мьютекс пользователя и число его держателей и ожидающих.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock захватывает мьютекс пользователя и возвращает функцию освобождения.
// Запись удаляется из карты, когда её больше никто не держит.
func (s *Service) lock(userID int64) func() {
	s.locksMu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.locksMu.Unlock()
	}
}

// lockedRandom — потокобезопасная обёртка над источником случайности.
type lockedRandom struct{ s *Service }

func (r lockedRandom) Intn(n int) int {
	r.s.rndMu.Lock()
	defer r.s.rndMu.Unlock()
	return r.s.rnd.Intn(n)
}

func (s *Service) random() RandomSource {
	return lockedRandom{s: s}
}

// load читает и проверяет журнал. Испорченный журнал заменяется
// состоянием по умолчанию (с предупреждением в логах), ошибкой это не считается.
func (s *Service) load(ctx context.Context, userID int64) (LedgerState, *CurrentExercise, error) {
	rec, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return LedgerState{}, nil, err
	}
	if !found {
		return DefaultLedger(), nil, nil
	}

	state, err := DecodeLedger(rec.State)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Журнал повреждён, используем состояние по умолчанию")
		s.metrics.CorruptedLedger()
	}
	return state, DecodeCurrent(rec.Current), nil
}

func (s *Service) save(ctx context.Context, userID int64, state LedgerState, cur *CurrentExercise) error {
	stateJSON, err := EncodeLedger(state)
	if err != nil {
		return err
	}
	curJSON, err := EncodeCurrent(cur)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, userID, stateJSON, curJSON)
}

// currentInstance возвращает текущее упражнение или назначает упражнение дня.
// assigned=true — упражнение только что назначено и его нужно сохранить.
func (s *Service) currentInstance(state LedgerState, cur *CurrentExercise, today Date) (ExerciseInstance, bool) {
	if cur != nil {
		if inst, ok := Resolve(s.catalog, *cur); ok {
			return inst, false
		}
	}
	return PickExercise(s.catalog, state.ExerciseRangeOverrides, Deterministic(today), s.random()), true
}

// Overview возвращает состояние пользователя для показа.
// Если упражнения ещё нет, назначает упражнение дня и сохраняет его.
func (s *Service) Overview(ctx context.Context, userID int64) (*Overview, error) {
	unlock := s.lock(userID)
	defer unlock()

	today := s.Today()
	state, cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	inst, assigned := s.currentInstance(state, cur, today)
	if assigned {
		c := inst.Current()
		if err := s.save(ctx, userID, state, &c); err != nil {
			return nil, err
		}
	}

	display := CurrentDisplayScore(state, today)
	pending := 0
	if !state.LastCompletedDate.IsZero() {
		pending = state.Score - display
	}

	return &Overview{
		DisplayScore:   display,
		PendingPenalty: pending,
		StreakDays:     state.StreakDays,
		CompletedToday: state.CompletedTodayCount(today),
		Exercise:       inst,
		Motivation:     DailyMotivation(today),
	}, nil
}

// Complete засчитывает выполнение текущего упражнения.
// Повтор при политике "одно в день" возвращается как результат
// с AlreadyCompleted=true, а не как ошибка.
func (s *Service) Complete(ctx context.Context, userID int64) (*CompletionResult, error) {
	unlock := s.lock(userID)
	defer unlock()

	today := s.Today()
	state, cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	inst, _ := s.currentInstance(state, cur, today)

	next, points, err := Complete(state, today, s.policy)
	if errors.Is(err, common.ErrAlreadyCompletedToday) {
		log.WithField("user_id", userID).Debug("Повторное выполнение отклонено политикой")
		return &CompletionResult{
			AlreadyCompleted: true,
			Position:         state.CompletedTodayCount(today),
			Score:            state.Score,
			StreakDays:       state.StreakDays,
			Exercise:         inst,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	penalty := state.Score - (next.Score - points)
	stateJSON, err := EncodeLedger(next)
	if err != nil {
		return nil, err
	}
	c := inst.Current()
	curJSON, err := EncodeCurrent(&c)
	if err != nil {
		return nil, err
	}
	completion := &Completion{
		UserID:      userID,
		ExerciseID:  inst.Exercise.ID,
		Intensity:   inst.Intensity,
		Points:      points,
		CompletedOn: today.Time(),
	}
	if err := s.store.SaveCompletion(ctx, userID, stateJSON, curJSON, completion); err != nil {
		return nil, fmt.Errorf("ошибка сохранения выполнения: %w", err)
	}

	s.metrics.Completion(next.ExercisesCompletedToday, points, penalty)
	log.WithFields(log.Fields{
		"user_id":  userID,
		"exercise": inst.Exercise.ID,
		"points":   points,
		"penalty":  penalty,
		"score":    next.Score,
		"streak":   next.StreakDays,
	}).Info("Упражнение выполнено")

	return &CompletionResult{
		Points:     points,
		Penalty:    penalty,
		Position:   next.ExercisesCompletedToday,
		Score:      next.Score,
		StreakDays: next.StreakDays,
		Exercise:   inst,
		Message:    SuccessMessage(points, s.random()),
	}, nil
}

// NewExercise выбирает случайное упражнение и делает его текущим.
func (s *Service) NewExercise(ctx context.Context, userID int64) (ExerciseInstance, error) {
	unlock := s.lock(userID)
	defer unlock()

	state, _, err := s.load(ctx, userID)
	if err != nil {
		return ExerciseInstance{}, err
	}

	inst := PickExercise(s.catalog, state.ExerciseRangeOverrides, Random(), s.random())
	c := inst.Current()
	if err := s.save(ctx, userID, state, &c); err != nil {
		return ExerciseInstance{}, err
	}
	return inst, nil
}

// Adjust меняет сложность текущего упражнения и заново бросает интенсивность.
// common.ErrInvalidRange — легче уже некуда, common.ErrRangeTooHigh — сложнее
// некуда; в обоих случаях ничего не сохраняется.
func (s *Service) Adjust(ctx context.Context, userID int64, direction Direction) (*AdjustResult, error) {
	unlock := s.lock(userID)
	defer unlock()

	today := s.Today()
	state, cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	inst, _ := s.currentInstance(state, cur, today)

	next, err := AdjustExerciseRange(state, inst.Exercise.ID, direction, s.catalog)
	if err != nil {
		s.metrics.RangeAdjustment(direction.String(), false)
		return nil, err
	}

	rerolled, err := Reroll(s.catalog, next.ExerciseRangeOverrides, inst.Exercise.ID, s.random())
	if err != nil {
		return nil, err
	}
	c := rerolled.Current()
	if err := s.save(ctx, userID, next, &c); err != nil {
		return nil, err
	}

	s.metrics.RangeAdjustment(direction.String(), true)
	newRange := EffectiveRange(rerolled.Exercise, next.ExerciseRangeOverrides)
	log.WithFields(log.Fields{
		"user_id":   userID,
		"exercise":  inst.Exercise.ID,
		"direction": direction.String(),
		"min":       newRange.Min,
		"max":       newRange.Max,
	}).Debug("Сложность изменена")

	return &AdjustResult{Exercise: rerolled, Range: newRange}, nil
}

// CompletedToday сообщает, было ли сегодня хоть одно выполнение.
func (s *Service) CompletedToday(ctx context.Context, userID int64) (bool, error) {
	state, _, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return state.CompletedTodayCount(s.Today()) > 0, nil
}

// History возвращает последние выполнения пользователя.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Completion, error) {
	return s.store.RecentCompletions(ctx, userID, limit)
}

// ExerciseName возвращает название упражнения по id (или сам id, если его нет в каталоге).
func (s *Service) ExerciseName(id string) string {
	if e, ok := s.catalog.Find(id); ok {
		return e.Name
	}
	return id
}

// Leaderboard возвращает limit лучших по показываемому счёту.
// Пользователи без единого выполнения в таблицу не попадают.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	entries := make([]LeaderboardEntry, 0, len(records))
	for _, rec := range records {
		state, err := DecodeLedger(rec.State)
		if err != nil {
			log.WithError(err).WithField("user_id", rec.UserID).Warn("Пропускаем повреждённый журнал в таблице лидеров")
			continue
		}
		if state.LastCompletedDate.IsZero() {
			// только смотрел упражнение, ни разу не выполнял
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:     rec.UserID,
			Score:      CurrentDisplayScore(state, today),
			StreakDays: state.StreakDays,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].StreakDays != entries[j].StreakDays {
			return entries[i].StreakDays > entries[j].StreakDays
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Reset сбрасывает журнал пользователя к состоянию первого запуска.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	unlock := s.lock(userID)
	defer unlock()

	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("Журнал сброшен")
	return nil
}
