package echo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/wsession/internal/domain"
)

func TestFrameRateLimiterWindow(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	now := base
	rl := NewFrameRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	id := domain.SessionID("a")
	assert.True(t, rl.Allow(id))
	assert.True(t, rl.Allow(id))
	assert.False(t, rl.Allow(id), "third frame in window")

	// Other connections have their own budget.
	assert.True(t, rl.Allow("b"))

	now = base.Add(1500 * time.Millisecond)
	assert.True(t, rl.Allow(id), "window slid")
}

func TestFrameRateLimiterDisabled(t *testing.T) {
	rl := NewFrameRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}

	var nilLimiter *FrameRateLimiter
	assert.True(t, nilLimiter.Allow("a"))
	nilLimiter.Forget("a")
}

func TestFrameRateLimiterForget(t *testing.T) {
	rl := NewFrameRateLimiter(1, time.Minute)
	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.tracked())

	rl.Forget("a")
	assert.Equal(t, 1, rl.tracked())
	assert.True(t, rl.Allow("a"))
}
