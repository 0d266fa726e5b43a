// Package civil provides calendar-day handling in a fixed civil timezone.
//
// The tracker keys everything by civil date: the wall-clock day in one
// configured IANA zone, independent of the server's locale. Dates cross
// package boundaries as ISO-8601 strings ("2006-01-02") so the storage
// layer and the aggregation queries share a single comparable format.
package civil

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar-day format used everywhere a date
// crosses a package boundary.
const DateLayout = "2006-01-02"

// Clock supplies wall-clock time and the current civil date.
//
// Production code uses WallClock; tests use testutil.FrozenClock to pin
// "today" to a known date.
type Clock interface {
	// Now returns the current instant (server clock).
	Now() time.Time

	// Today returns the current calendar day in the clock's civil zone,
	// formatted as DateLayout.
	Today() string
}

// WallClock is the production Clock. It holds the civil zone resolved once
// at startup; two calls straddling midnight in that zone may observe
// different Today values.
type WallClock struct {
	loc *time.Location
}

// NewWallClock creates a WallClock for the given zone.
// A nil location falls back to UTC.
func NewWallClock(loc *time.Location) *WallClock {
	if loc == nil {
		loc = time.UTC
	}
	return &WallClock{loc: loc}
}

// Now returns the current instant.
func (c *WallClock) Now() time.Time {
	return time.Now()
}

// Today returns the current calendar day in the clock's zone.
func (c *WallClock) Today() string {
	return c.Now().In(c.loc).Format(DateLayout)
}

// ParseDate validates an ISO-8601 calendar day string.
// Rejects non-zero-padded and out-of-range dates ("2025-1-5", "2025-02-30").
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// IsDate reports whether s is a well-formed ISO-8601 calendar day.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// AddDays returns the date n calendar days after date (n may be negative).
// The input must be a valid DateLayout string.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// WindowStart returns the first day of an inclusive trailing window of the
// given length ending on end: for days=1 the start is end itself.
func WindowStart(end string, days int) (string, error) {
	if days < 1 {
		return "", fmt.Errorf("window length must be >= 1, got %d", days)
	}
	return AddDays(end, -(days - 1))
}
