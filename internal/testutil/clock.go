// Package testutil provides deterministic helpers for tests.
package testutil

import (
	"sync"
	"time"
)

// TimestampLayout is the fixed 24-character ISO-8601 layout used
// throughout the ledger.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultBase is the fixture epoch every deterministic clock starts from
// unless told otherwise.
const DefaultBase = "2026-01-15T09:00:00.000Z"

// Clock is a thread-safe deterministic timestamp source for tests. Each
// call to Next returns the base time advanced by one more second,
// formatted to the ledger layout, so the same test always produces the
// same timestamp sequence.
type Clock struct {
	mu   sync.Mutex
	base time.Time
	seq  int
}

// NewClock creates a clock starting at DefaultBase. The first call to
// Next returns the base time itself.
func NewClock() *Clock {
	base, err := time.Parse(TimestampLayout, DefaultBase)
	if err != nil {
		panic(err) // DefaultBase is a constant; this cannot fail
	}
	return &Clock{base: base}
}

// Next returns the next timestamp and advances the clock one second.
func (c *Clock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.base.Add(time.Duration(c.seq) * time.Second)
	c.seq++
	return ts.UTC().Format(TimestampLayout)
}

// Current returns the timestamp Next would return, without advancing.
func (c *Clock) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.seq) * time.Second).UTC().Format(TimestampLayout)
}

// Reset rewinds the clock to its base time.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
