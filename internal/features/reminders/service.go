// Package reminders — service.go включает/выключает напоминания и рассылает их.
// Напоминание приходит раз в день, когда наступило выбранное время, и только
// тем, кто сегодня ещё не тренировался.
package reminders

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/features/streak"
	"serotonyl.ru/exercise-bot/internal/metrics"
)

// Store — хранилище настроек. Реализуется Repository.
type Store interface {
	Get(ctx context.Context, userID int64) (*Settings, bool, error)
	Upsert(ctx context.Context, s *Settings) error
	ListDue(ctx context.Context, clock string, today time.Time) ([]*Settings, error)
	MarkSent(ctx context.Context, userID int64, day time.Time) error
}

// Ledger — то, что напоминаниям нужно от журнала очков.
type Ledger interface {
	CompletedToday(ctx context.Context, userID int64) (bool, error)
	Catalog() streak.Catalog
}

// SendFunc отправляет текст пользователю в личные сообщения.
type SendFunc func(userID int64, text string) error

// Service управляет напоминаниями.
type Service struct {
	store       Store
	ledger      Ledger
	metrics     *metrics.Metrics
	loc         *time.Location
	defaultTime string
	now         func() time.Time
}

// NewService создаёт сервис напоминаний.
func NewService(store Store, ledger Ledger, cfg *config.Config, m *metrics.Metrics) *Service {
	return &Service{
		store:       store,
		ledger:      ledger,
		metrics:     m,
		loc:         cfg.Location(),
		defaultTime: cfg.ReminderDefaultTime,
		now:         time.Now,
	}
}

// Status возвращает настройки пользователя (выключенные с временем по умолчанию, если их нет).
func (s *Service) Status(ctx context.Context, userID int64) (*Settings, error) {
	current, found, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Settings{UserID: userID, RemindAt: s.defaultTime}, nil
	}
	return current, nil
}

// Enable включает напоминания на время clock ("ЧЧ:ММ").
// Пустой clock — оставить прежнее время (или время по умолчанию).
// Если сегодняшнее время уже прошло, первое напоминание придёт завтра.
func (s *Service) Enable(ctx context.Context, userID int64, clock string) (*Settings, error) {
	settings, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}

	if clock == "" {
		clock = settings.RemindAt
	}
	normalized, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}

	local := s.now().In(s.loc)
	settings.Enabled = true
	settings.RemindAt = normalized
	if local.Format(clockLayout) >= normalized {
		today := streak.DateOf(local).Time()
		settings.LastSentOn = &today
	}

	if err := s.store.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id":   userID,
		"remind_at": normalized,
	}).Info("Напоминания включены")
	return settings, nil
}

// Disable выключает напоминания.
func (s *Service) Disable(ctx context.Context, userID int64) error {
	settings, err := s.Status(ctx, userID)
	if err != nil {
		return err
	}
	settings.Enabled = false
	if err := s.store.Upsert(ctx, settings); err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("Напоминания выключены")
	return nil
}

// SendDue рассылает напоминания, время которых наступило к моменту now.
// Каждому — не больше одного в день. Кто сегодня уже выполнил упражнение,
// напоминание не получает, но день всё равно отмечается.
// Возвращает число отправленных сообщений.
func (s *Service) SendDue(ctx context.Context, now time.Time, send SendFunc) (int, error) {
	local := now.In(s.loc)
	clock := local.Format(clockLayout)
	today := streak.DateOf(local)

	due, err := s.store.ListDue(ctx, clock, today.Time())
	if err != nil {
		return 0, fmt.Errorf("ошибка выборки напоминаний: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	text := reminderText(streak.DailyExercise(s.ledger.Catalog(), today), streak.DailyMotivation(today))

	sent := 0
	for _, settings := range due {
		if settings.sentOn(today.String()) {
			continue
		}
		logger := log.WithField("user_id", settings.UserID)

		done, err := s.ledger.CompletedToday(ctx, settings.UserID)
		if err != nil {
			logger.WithError(err).Warn("Не удалось проверить выполнение, напоминание отложено")
			continue
		}

		if !done {
			if err := send(settings.UserID, text); err != nil {
				// Повторять каждую минуту бессмысленно: чаще всего бот заблокирован
				logger.WithError(err).Warn("Напоминание не доставлено")
			} else {
				sent++
				s.metrics.ReminderSent()
			}
		} else {
			logger.Debug("Упражнение уже выполнено, напоминание не нужно")
		}

		if err := s.store.MarkSent(ctx, settings.UserID, today.Time()); err != nil {
			logger.WithError(err).Error("Не удалось отметить напоминание")
		}
	}

	if sent > 0 {
		log.WithFields(log.Fields{"sent": sent, "due": len(due)}).Info("Напоминания разосланы")
	}
	return sent, nil
}

func reminderText(e streak.Exercise, motivation string) string {
	return fmt.Sprintf(
		"⏰ Время для упражнения! 💪\n\n"+
			"Упражнение дня: %s\n"+
			"Напиши !упражнение, чтобы начать, и !сделал, когда закончишь.\n\n"+
			"💬 %s",
		e.Name, motivation,
	)
}
