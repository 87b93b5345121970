package reminders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/exercise-bot/internal/common"
	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/features/streak"
	"serotonyl.ru/exercise-bot/internal/metrics"
)

type memoryStore struct {
	settings map[int64]*Settings
}

func (m *memoryStore) Get(_ context.Context, userID int64) (*Settings, bool, error) {
	s, ok := m.settings[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *s
	return &cp, true, nil
}

func (m *memoryStore) Upsert(_ context.Context, s *Settings) error {
	cp := *s
	m.settings[s.UserID] = &cp
	return nil
}

func (m *memoryStore) ListDue(_ context.Context, clock string, today time.Time) ([]*Settings, error) {
	var out []*Settings
	for _, s := range m.settings {
		if !s.Enabled || s.RemindAt > clock {
			continue
		}
		if s.LastSentOn != nil && !s.LastSentOn.Before(today) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memoryStore) MarkSent(_ context.Context, userID int64, day time.Time) error {
	m.settings[userID].LastSentOn = &day
	return nil
}

type fakeLedger struct {
	done map[int64]bool
	err  error
}

func (f *fakeLedger) CompletedToday(_ context.Context, userID int64) (bool, error) {
	return f.done[userID], f.err
}

func (f *fakeLedger) Catalog() streak.Catalog {
	return streak.DefaultCatalog()
}

type outbox struct {
	sent map[int64]string
	fail map[int64]bool
}

func (o *outbox) send(userID int64, text string) error {
	if o.fail[userID] {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	o.sent[userID] = text
	return nil
}

type fixture struct {
	svc     *Service
	store   *memoryStore
	ledger  *fakeLedger
	metrics *metrics.Metrics
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   &memoryStore{settings: map[int64]*Settings{}},
		ledger:  &fakeLedger{done: map[int64]bool{}},
		metrics: metrics.New(),
		now:     time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{AppTimezone: "UTC", ReminderDefaultTime: "09:00"}
	f.svc = NewService(f.store, f.ledger, cfg, f.metrics)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:30", "09:30", true},
		{"9:30", "09:30", true},
		{" 23:59 ", "23:59", true},
		{"00:00", "00:00", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"9:5", "", false},
		{"завтра", "", false},
		{"0930", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, common.ErrBadReminderTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusDefaults(t *testing.T) {
	f := newFixture(t)
	s, err := f.svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.Equal(t, "09:00", s.RemindAt)
}

func TestEnableAndDisable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.svc.Enable(ctx, 1, "8:15")
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.Equal(t, "08:15", s.RemindAt)
	assert.Nil(t, s.LastSentOn, "08:15 has not come yet at 07:00")

	_, err = f.svc.Enable(ctx, 1, "25:00")
	assert.ErrorIs(t, err, common.ErrBadReminderTime)
	assert.Equal(t, "08:15", f.store.settings[1].RemindAt)

	require.NoError(t, f.svc.Disable(ctx, 1))
	assert.False(t, f.store.settings[1].Enabled)
	assert.Equal(t, "08:15", f.store.settings[1].RemindAt)

	// "вкл" без времени — прежнее время
	s, err = f.svc.Enable(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "08:15", s.RemindAt)
}

func TestEnableAfterTimePassedStartsTomorrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enable(ctx, 1, "06:00")
	require.NoError(t, err)

	box := &outbox{sent: map[int64]string{}}
	n, err := f.svc.SendDue(ctx, f.now.Add(time.Minute), box.send)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.svc.SendDue(ctx, f.now.AddDate(0, 0, 1).Add(-time.Hour), box.send)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSendDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3, 4} {
		_, err := f.svc.Enable(ctx, id, "09:00")
		require.NoError(t, err)
	}
	_, err := f.svc.Enable(ctx, 5, "21:00")
	require.NoError(t, err)
	require.NoError(t, f.svc.Disable(ctx, 4))

	f.ledger.done[2] = true
	box := &outbox{sent: map[int64]string{}, fail: map[int64]bool{3: true}}

	// 08:59 — рано
	n, err := f.svc.SendDue(ctx, time.Date(2024, 5, 10, 8, 59, 0, 0, time.UTC), box.send)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// 09:03 — пропущенная минута cron не мешает
	n, err = f.svc.SendDue(ctx, time.Date(2024, 5, 10, 9, 3, 0, 0, time.UTC), box.send)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Contains(t, box.sent, int64(1))
	assert.NotContains(t, box.sent, int64(2), "already trained today")
	assert.NotContains(t, box.sent, int64(4), "disabled")
	assert.NotContains(t, box.sent, int64(5), "later time")

	today := streak.MustDate("2024-05-10")
	assert.Contains(t, box.sent[1], streak.DailyExercise(streak.DefaultCatalog(), today).Name)
	assert.Contains(t, box.sent[1], streak.DailyMotivation(today))

	// отмечены все, кому было пора, включая недоставленное
	for _, id := range []int64{1, 2, 3} {
		require.NotNil(t, f.store.settings[id].LastSentOn)
		assert.Equal(t, "2024-05-10", common.DateISO(*f.store.settings[id].LastSentOn))
	}

	// второй раз за день — ничего
	n, err = f.svc.SendDue(ctx, time.Date(2024, 5, 10, 9, 4, 0, 0, time.UTC), box.send)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	expected := `
# HELP exercise_bot_reminders_sent_total Daily exercise reminders sent.
# TYPE exercise_bot_reminders_sent_total counter
exercise_bot_reminders_sent_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "exercise_bot_reminders_sent_total"))
}

func TestSendDueUsesAppTimezone(t *testing.T) {
	f := newFixture(t)
	f.svc.loc = time.FixedZone("MSK", 3*60*60)
	ctx := context.Background()
	_, err := f.svc.Enable(ctx, 1, "09:00")
	require.NoError(t, err)

	box := &outbox{sent: map[int64]string{}}
	// 06:00 UTC = 09:00 MSK
	n, err := f.svc.SendDue(ctx, time.Date(2024, 5, 11, 6, 0, 0, 0, time.UTC), box.send)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSendDueLedgerErrorPostpones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Enable(ctx, 1, "09:00")
	require.NoError(t, err)
	f.ledger.err = errors.New("db down")

	box := &outbox{sent: map[int64]string{}}
	n, err := f.svc.SendDue(ctx, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), box.send)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Nil(t, f.store.settings[1].LastSentOn)
}

type recordingSender struct {
	texts []string
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.texts = append(r.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func TestHandleReminderCommands(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}
	h := NewHandler(f.svc, sender)
	ctx := context.Background()

	h.HandleReminder(ctx, 10, 1, nil)
	h.HandleReminder(ctx, 10, 1, []string{"7:45"})
	h.HandleReminder(ctx, 10, 1, []string{"полдень"})
	h.HandleReminder(ctx, 10, 1, []string{"ВЫКЛ"})

	require.Len(t, sender.texts, 4)
	assert.Contains(t, sender.texts[0], "выключены")
	assert.Contains(t, sender.texts[1], "07:45")
	assert.True(t, strings.HasPrefix(sender.texts[2], "❌"))
	assert.Contains(t, sender.texts[3], "выключены")
	assert.False(t, f.store.settings[1].Enabled)
}
