package ratelimit

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Limiter is a sliding-window rate limiter keyed by sender id. Each
// sender gets an independent window of request timestamps; timestamps
// older than the window are pruned lazily on access. The table itself
// is size-bounded: on overflow only the most-recently-active half of
// the senders is kept, so memory stays bounded under sustained load
// from many distinct senders.
type Limiter struct {
	mu         sync.Mutex
	window     time.Duration
	max        int
	maxSenders int
	entries    map[string][]time.Time
	now        func() time.Time
}

// NewLimiter creates a Limiter allowing max requests per window, with
// at most maxSenders tracked at once.
func NewLimiter(window time.Duration, max, maxSenders int) *Limiter {
	return &Limiter{
		window:     window,
		max:        max,
		maxSenders: maxSenders,
		entries:    make(map[string][]time.Time),
		now:        time.Now,
	}
}

// Allow reports whether a request from senderID is within its rate
// limit and, if so, records it. Safe for concurrent use.
func (l *Limiter) Allow(senderID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.entries[senderID][:0]
	for _, t := range l.entries[senderID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.entries[senderID] = recent
		logrus.Warnf("Rate limit exceeded for sender: %s", senderID)
		return false
	}

	l.entries[senderID] = append(recent, now)

	if len(l.entries) > l.maxSenders {
		l.evict()
	}
	return true
}

// Size returns the number of tracked senders.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// evict rebuilds the table keeping only the most-recently-active half
// of the senders. An approximation of LRU; precision here is not
// safety-critical, only a volume control. Caller holds l.mu.
func (l *Limiter) evict() {
	type activity struct {
		sender string
		last   time.Time
	}

	senders := make([]activity, 0, len(l.entries))
	for sender, times := range l.entries {
		var last time.Time
		for _, t := range times {
			if t.After(last) {
				last = t
			}
		}
		senders = append(senders, activity{sender: sender, last: last})
	}

	sort.Slice(senders, func(i, j int) bool {
		return senders[i].last.After(senders[j].last)
	})

	keep := l.maxSenders / 2
	if keep < 1 {
		keep = 1
	}
	if keep > len(senders) {
		keep = len(senders)
	}

	rebuilt := make(map[string][]time.Time, keep)
	for _, a := range senders[:keep] {
		rebuilt[a.sender] = l.entries[a.sender]
	}

	logrus.Infof("Rate limit table evicted: %d senders kept of %d", keep, len(senders))
	l.entries = rebuilt
}
