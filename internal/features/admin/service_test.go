package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/exercise-bot/internal/common"
	"serotonyl.ru/exercise-bot/internal/config"
	"serotonyl.ru/exercise-bot/internal/features/members"
	"serotonyl.ru/exercise-bot/internal/features/streak"
)

const (
	adminID  = int64(100)
	password = "correct horse"
)

type attempt struct {
	userID  int64
	success bool
	at      time.Time
}

type fakeSessions struct {
	now      func() time.Time
	sessions map[int64]*AdminSession
	attempts []attempt
}

func newFakeSessions(now func() time.Time) *fakeSessions {
	return &fakeSessions{now: now, sessions: make(map[int64]*AdminSession)}
}

func (f *fakeSessions) CreateSession(_ context.Context, s *AdminSession) error {
	cp := *s
	cp.IsActive = true
	f.sessions[s.UserID] = &cp
	return nil
}

func (f *fakeSessions) GetActiveSession(_ context.Context, userID int64) (*AdminSession, error) {
	s, ok := f.sessions[userID]
	if !ok || !s.IsActive || !s.ExpiresAt.After(f.now()) {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessions) DeactivateSession(_ context.Context, userID int64) error {
	if s, ok := f.sessions[userID]; ok {
		s.IsActive = false
	}
	return nil
}

func (f *fakeSessions) UpdateActivity(_ context.Context, userID int64) error {
	if s, ok := f.sessions[userID]; ok {
		s.LastActivity = f.now()
	}
	return nil
}

func (f *fakeSessions) LogAttempt(_ context.Context, userID int64, success bool) error {
	f.attempts = append(f.attempts, attempt{userID: userID, success: success, at: f.now()})
	return nil
}

func (f *fakeSessions) CountFailedAttempts(_ context.Context, userID int64, since time.Time) (int, error) {
	n := 0
	for _, a := range f.attempts {
		if a.userID == userID && !a.success && !a.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(before) || !s.IsActive {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// Хеш с маленькими параметрами, чтобы тесты не жгли 64 MB на каждую проверку.
func testHash(t *testing.T) string {
	t.Helper()
	return hashWithSalt(password, []byte("0123456789abcdef"), 1024, 1, 1, 32)
}

func newTestService(t *testing.T) (*Service, *fakeSessions, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := newFakeSessions(c.now)
	cfg := &config.Config{AdminIDs: []int64{adminID}, AdminPasswordHash: testHash(t)}
	svc := NewService(store, cfg)
	svc.now = c.now
	return svc, store, c
}

func TestVerifyArgon2id(t *testing.T) {
	hash := testHash(t)
	assert.True(t, verifyArgon2id(password, hash))
	assert.False(t, verifyArgon2id("wrong", hash))
	assert.False(t, verifyArgon2id(password, "not-a-hash"))
	assert.False(t, verifyArgon2id(password, "$argon2id$v=19$m=x$salt$hash"))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))
	assert.True(t, verifyArgon2id("secret", hash))

	other, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "соль должна быть случайной")
}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("не админ", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		assert.ErrorIs(t, svc.VerifyPassword(ctx, 7, password), common.ErrNotAdmin)
	})

	t.Run("успешный вход создаёт сессию", func(t *testing.T) {
		svc, store, _ := newTestService(t)
		require.NoError(t, svc.VerifyPassword(ctx, adminID, password))
		assert.True(t, svc.HasActiveSession(ctx, adminID))
		assert.NotEmpty(t, store.sessions[adminID].SessionToken)
		require.Len(t, store.attempts, 1)
		assert.True(t, store.attempts[0].success)
	})

	t.Run("блокировка после трёх ошибок", func(t *testing.T) {
		svc, _, c := newTestService(t)
		for i := 0; i < maxAttempts; i++ {
			assert.ErrorIs(t, svc.VerifyPassword(ctx, adminID, "nope"), common.ErrWrongPassword)
		}
		assert.ErrorIs(t, svc.VerifyPassword(ctx, adminID, password), common.ErrTooManyAttempts)

		c.t = c.t.Add(attemptsWindow + time.Minute)
		assert.NoError(t, svc.VerifyPassword(ctx, adminID, password))
	})
}

func TestSessionExpiryAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService(t)
	require.NoError(t, svc.VerifyPassword(ctx, adminID, password))

	c.t = c.t.Add(sessionTTL + time.Second)
	assert.False(t, svc.HasActiveSession(ctx, adminID))

	c.t = c.t.Add(sessionTTL)
	require.NoError(t, svc.PurgeExpired(ctx))
	assert.Empty(t, store.sessions)

	require.NoError(t, svc.VerifyPassword(ctx, adminID, password))
	svc.SetState(adminID, StateResetSelect, nil)
	require.NoError(t, svc.Logout(ctx, adminID))
	assert.False(t, svc.HasActiveSession(ctx, adminID))
	assert.Nil(t, svc.GetState(adminID))
}

func TestStateExpires(t *testing.T) {
	svc, _, c := newTestService(t)
	svc.SetState(adminID, StateAwaitingPassword, nil)
	require.NotNil(t, svc.GetState(adminID))

	c.t = c.t.Add(stateTTL + time.Second)
	assert.Nil(t, svc.GetState(adminID))
}

// --- обработчики ---

type recordingSender struct {
	texts []string
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.texts = append(r.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (r *recordingSender) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

type fakeLedger struct {
	reset []int64
	top   []streak.LeaderboardEntry
}

func (f *fakeLedger) Reset(_ context.Context, userID int64) error {
	f.reset = append(f.reset, userID)
	return nil
}

func (f *fakeLedger) Leaderboard(_ context.Context, limit int) ([]streak.LeaderboardEntry, error) {
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

type fakeMembers struct {
	list []*members.Member
}

func (f *fakeMembers) List(context.Context) ([]*members.Member, error) { return f.list, nil }
func (f *fakeMembers) Count(context.Context) (int, error)             { return len(f.list), nil }
func (f *fakeMembers) DisplayName(_ context.Context, userID int64) string {
	for _, m := range f.list {
		if m.UserID == userID {
			return m.DisplayName()
		}
	}
	return "?"
}

func newTestHandler(t *testing.T) (*Handler, *recordingSender, *fakeLedger) {
	t.Helper()
	svc, _, _ := newTestService(t)
	sender := &recordingSender{}
	ledger := &fakeLedger{top: []streak.LeaderboardEntry{{UserID: 1, Score: 42, StreakDays: 3}}}
	mem := &fakeMembers{list: []*members.Member{
		{UserID: 1, Username: "alice"},
		{UserID: 2, FirstName: "Борис"},
	}}
	return NewHandler(svc, ledger, mem, sender), sender, ledger
}

func TestHandlerIgnoresNonAdminsAndPlainCommands(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(t)

	assert.False(t, h.HandleAdminMessage(ctx, 7, 7, "/login"))
	assert.False(t, h.HandleAdminMessage(ctx, adminID, adminID, "сделал"))
	assert.Empty(t, sender.texts)
}

func TestHandlerResetFlow(t *testing.T) {
	ctx := context.Background()
	h, sender, ledger := newTestHandler(t)

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "/login"))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, password))
	assert.Contains(t, sender.texts, "✅ Аутентификация успешна!")

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonReset))
	assert.Contains(t, sender.last(), "1. @alice (id1)")
	assert.Contains(t, sender.last(), "2. Борис (id2)")

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "9"))
	assert.Contains(t, sender.last(), "Неверный номер")

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "2"))
	assert.Contains(t, sender.last(), "Борис")

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "да"))
	assert.Equal(t, []int64{2}, ledger.reset)
	assert.Equal(t, "✅ Прогресс Борис сброшен", sender.last())
}

func TestHandlerResetCancel(t *testing.T) {
	ctx := context.Background()
	h, sender, ledger := newTestHandler(t)

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "/login "+password))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonReset))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "1"))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "нет"))

	assert.Empty(t, ledger.reset)
	assert.Equal(t, "Отменено", sender.last())
}

func TestHandlerStatsAndLogout(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(t)

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "/login "+password))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonStats))
	assert.Contains(t, sender.last(), "Участников: 2")
	assert.Contains(t, sender.last(), "1. @alice — 42 очка, серия 3 дня")

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonLogout))
	assert.Equal(t, "👋 Сессия закрыта", sender.last())
	assert.False(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonStats))
}

func TestHandlerWrongPassword(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(t)

	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "/login"))
	require.True(t, h.HandleAdminMessage(ctx, adminID, adminID, "nope"))
	assert.Equal(t, "❌ неверный пароль", sender.last())
	assert.False(t, h.HandleAdminMessage(ctx, adminID, adminID, ButtonStats))
}
