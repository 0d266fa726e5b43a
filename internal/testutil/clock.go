// Package testutil provides deterministic test doubles shared across packages.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/ritualhq/ritual/internal/civil"
)

// FrozenClock is a civil.Clock pinned to a fixed date for tests.
//
// The frozen instant sits at 12:00 UTC on the configured day so small
// Advance calls never cross a date boundary by accident. Scenario and
// streak tests move the clock explicitly with SetToday or Advance.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FrozenClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFrozenClock creates a clock frozen at noon UTC on the given day.
// Panics on a malformed date: a bad fixture is programmer error.
func NewFrozenClock(date string) *FrozenClock {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad frozen clock date %q: %v", date, err))
	}
	return &FrozenClock{now: d.Add(12 * time.Hour)}
}

// Now returns the frozen instant.
func (c *FrozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Today returns the frozen calendar day.
func (c *FrozenClock) Today() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.UTC().Format(civil.DateLayout)
}

// Advance moves the frozen instant forward by d.
// Negative durations move it backward.
func (c *FrozenClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SetToday jumps the clock to noon UTC on a new day.
// Panics on a malformed date, same as NewFrozenClock.
func (c *FrozenClock) SetToday(date string) {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad frozen clock date %q: %v", date, err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = d.Add(12 * time.Hour)
}
