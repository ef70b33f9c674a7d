package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time explicitly.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max, maxSenders int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(time.Minute, max, maxSenders)
	l.now = clock.now
	return l, clock
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(10, 1000)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("user-1"), "call %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("user-1"), "11th call within the window should be rejected")
}

func TestWindowExpiry(t *testing.T) {
	l, clock := newTestLimiter(10, 1000)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("user-1"))
	}
	assert.False(t, l.Allow("user-1"))

	// Rejected attempts are not recorded, so the window fully elapses.
	clock.advance(61 * time.Second)
	assert.True(t, l.Allow("user-1"), "should be allowed again after the window elapsed")
}

func TestSendersIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1000)

	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-2"))
}

func TestRejectionNotRecorded(t *testing.T) {
	l, clock := newTestLimiter(2, 1000)

	assert.True(t, l.Allow("user-1"))
	clock.advance(30 * time.Second)
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))

	// First timestamp ages out; only the second remains in the window.
	clock.advance(31 * time.Second)
	assert.True(t, l.Allow("user-1"))
}

func TestEvictionKeepsMostRecentHalf(t *testing.T) {
	l, clock := newTestLimiter(10, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("user-%d", i)))
		clock.advance(time.Millisecond)
	}
	assert.Equal(t, 10, l.Size())

	// The 11th sender overflows the table; the least-recently-active
	// half is discarded.
	assert.True(t, l.Allow("user-10"))
	assert.Equal(t, 5, l.Size())

	_, kept := l.entries["user-10"]
	assert.True(t, kept, "freshest sender should survive eviction")

	_, evicted := l.entries["user-0"]
	assert.False(t, evicted, "oldest sender should have been evicted")
}

func TestEvictionDoesNotResetWindows(t *testing.T) {
	l, clock := newTestLimiter(1, 2)

	assert.True(t, l.Allow("user-a"))
	clock.advance(time.Millisecond)
	assert.True(t, l.Allow("user-b"))
	clock.advance(time.Millisecond)
	assert.True(t, l.Allow("user-c"))

	// user-c survived eviction with its recorded request intact.
	assert.False(t, l.Allow("user-c"))
}
