// Package quota enforces the per-user message allowance.
//
// Usage is recorded as an append-only event log: one row per accepted
// message, never updated or deleted. The allowance is a count over a rolling
// window ending now, so a user regains capacity as old events age out rather
// than at a fixed reset time.
package quota

import (
	"errors"
	"time"
)

// Defaults for the rolling allowance.
const (
	// DefaultLimit is the number of messages allowed per window.
	DefaultLimit = 5

	// DefaultWindow is the rolling window length.
	DefaultWindow = 12 * time.Hour
)

// ErrQuotaExceeded reports that a user is at their message ceiling.
// Callers map it to HTTP 429.
var ErrQuotaExceeded = errors.New("quota: message limit reached")

// CountInWindow counts events inside the rolling window (now-window, now].
// Events dated in the future are counted: a clock-skewed event should reduce
// the allowance rather than widen it.
func CountInWindow(events []time.Time, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	count := 0
	for _, at := range events {
		if at.After(cutoff) {
			count++
		}
	}
	return count
}

// Remaining reports how many messages the user may still send given the
// events inside the window.
func Remaining(events []time.Time, now time.Time, window time.Duration, limit int) int {
	used := CountInWindow(events, now, window)
	if used >= limit {
		return 0
	}
	return limit - used
}
