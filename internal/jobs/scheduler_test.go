package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/exercise-bot/internal/features/reminders"
)

type fakeReminders struct {
	calls []time.Time
	err   error
}

func (f *fakeReminders) SendDue(_ context.Context, now time.Time, send reminders.SendFunc) (int, error) {
	f.calls = append(f.calls, now)
	if f.err != nil {
		return 0, f.err
	}
	return 1, send(1, "пора")
}

type fakePurger struct{ calls int }

func (f *fakePurger) PurgeExpired(context.Context) error {
	f.calls++
	return nil
}

func TestRunRemindersPassesClockAndSender(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	r := &fakeReminders{}
	var sentTo []int64
	s := NewScheduler(time.UTC, r, &fakePurger{}, func(userID int64, _ string) error {
		sentTo = append(sentTo, userID)
		return nil
	}, true)
	s.now = func() time.Time { return fixed }

	s.runReminders(context.Background())

	require.Len(t, r.calls, 1)
	assert.Equal(t, fixed, r.calls[0])
	assert.Equal(t, []int64{1}, sentTo)
}

func TestRunRemindersSurvivesError(t *testing.T) {
	r := &fakeReminders{err: errors.New("db down")}
	s := NewScheduler(time.UTC, r, &fakePurger{}, nil, true)

	assert.NotPanics(t, func() { s.runReminders(context.Background()) })
}

func TestStartRegistersJobs(t *testing.T) {
	p := &fakePurger{}

	on := NewScheduler(time.UTC, &fakeReminders{}, p, nil, true)
	require.NoError(t, on.Start(context.Background()))
	assert.Len(t, on.cron.Entries(), 2)
	on.Stop()

	off := NewScheduler(time.UTC, &fakeReminders{}, p, nil, false)
	require.NoError(t, off.Start(context.Background()))
	assert.Len(t, off.cron.Entries(), 1)
	off.Stop()

	on.runPurge(context.Background())
	assert.Equal(t, 1, p.calls)
}
