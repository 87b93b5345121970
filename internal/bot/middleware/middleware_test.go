package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()
	rl.now = func() time.Time { return current }

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))
	assert.True(t, rl.Allow(2), "лимит считается на пользователя")

	current = current.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow(1))
}

func TestRateLimiterSweep(t *testing.T) {
	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Close()
	rl.now = func() time.Time { return current }

	rl.Allow(1)
	current = current.Add(30 * time.Second)
	rl.Allow(2)
	current = current.Add(45 * time.Second)
	rl.sweep()

	assert.NotContains(t, rl.requests, int64(1))
	assert.Contains(t, rl.requests, int64(2))
}

func TestRecoverFromPanic(t *testing.T) {
	var got any
	func() {
		defer RecoverFromPanic(func(r any) { got = r })
		panic("boom")
	}()
	assert.Equal(t, "boom", got)

	assert.NotPanics(t, func() {
		defer RecoverFromPanic(nil)
		panic("boom")
	})
}

func TestTruncateKeepsRunes(t *testing.T) {
	text := strings.Repeat("я", 60)
	out := truncate(text, 50)
	assert.Equal(t, strings.Repeat("я", 50)+"...", out)
	assert.Equal(t, "коротко", truncate("коротко", 50))
}
