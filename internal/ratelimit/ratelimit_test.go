package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_DisabledAlwaysAllows(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest())
	}
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 0, true)

	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest())
}

func TestRateLimiter_MinuteWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 0, true)

	base := time.Now()
	current := base
	rl.now = func() time.Time { return current }

	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest())

	current = base.Add(61 * time.Second)
	assert.True(t, rl.AllowRequest())
}

func TestRateLimiter_HourLimitOutlivesMinuteWindow(t *testing.T) {
	rl := NewRateLimiter(10, 2, true)

	base := time.Now()
	current := base
	rl.now = func() time.Time { return current }

	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())

	// Minute window has expired but the hour budget is spent
	current = base.Add(2 * time.Minute)
	assert.False(t, rl.AllowRequest())

	current = base.Add(61 * time.Minute)
	assert.True(t, rl.AllowRequest())
}

func TestRateLimiter_Reset(t *testing.T) {
	rl := NewRateLimiter(1, 1, true)

	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest())

	rl.Reset()
	assert.True(t, rl.AllowRequest())
}

func TestRateLimiter_Stats(t *testing.T) {
	rl := NewRateLimiter(5, 20, true)

	rl.AllowRequest()
	rl.AllowRequest()

	stats := rl.GetStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 2, stats.RequestsLastHour)
	assert.Equal(t, 3, stats.RemainingThisMinute)
	assert.Equal(t, 18, stats.RemainingThisHour)

	disabled := NewRateLimiter(5, 20, false).GetStats()
	assert.False(t, disabled.Enabled)
}
