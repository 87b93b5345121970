// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежеминутная рассылка напоминаний
// и ночная очистка админ-сессий.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/features/reminders"
)

// Reminders — рассылка напоминаний, у которых наступило время.
type Reminders interface {
	SendDue(ctx context.Context, now time.Time, send reminders.SendFunc) (int, error)
}

// SessionPurger чистит истёкшие админ-сессии.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron      *cron.Cron
	loc       *time.Location
	reminders Reminders
	purger    SessionPurger
	sendFunc  reminders.SendFunc
	now       func() time.Time

	remindersEnabled bool
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(loc *time.Location, r Reminders, purger SessionPurger, sendFunc reminders.SendFunc, remindersEnabled bool) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		loc:              loc,
		reminders:        r,
		purger:           purger,
		sendFunc:         sendFunc,
		now:              time.Now,
		remindersEnabled: remindersEnabled,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.remindersEnabled {
		// Каждую минуту: время напоминаний задаётся с точностью до минуты
		if _, err := s.cron.AddFunc("* * * * *", func() { s.runReminders(ctx) }); err != nil {
			return err
		}
	}

	// Очистка сессий в 04:00
	if _, err := s.cron.AddFunc("0 4 * * *", func() { s.runPurge(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"location":  s.loc.String(),
		"reminders": s.remindersEnabled,
	}).Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) runReminders(ctx context.Context) {
	log.Debug("[CRON] Проверка напоминаний")
	sent, err := s.reminders.SendDue(ctx, s.now(), s.sendFunc)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка напоминаний")
		return
	}
	if sent > 0 {
		log.WithField("sent", sent).Info("[CRON] Напоминания отправлены")
	}
}

func (s *Scheduler) runPurge(ctx context.Context) {
	if err := s.purger.PurgeExpired(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка очистки админ-сессий")
	}
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
