package quota

import (
	"testing"
	"time"
)

func TestCountInWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	window := 12 * time.Hour

	tests := []struct {
		name   string
		events []time.Time
		want   int
	}{
		{name: "no events", events: nil, want: 0},
		{
			name:   "all inside window",
			events: []time.Time{now.Add(-time.Hour), now.Add(-11 * time.Hour)},
			want:   2,
		},
		{
			name:   "old events excluded",
			events: []time.Time{now.Add(-13 * time.Hour), now.Add(-12*time.Hour - time.Second)},
			want:   0,
		},
		{
			name:   "exactly at cutoff excluded",
			events: []time.Time{now.Add(-window)},
			want:   0,
		},
		{
			name:   "just inside cutoff included",
			events: []time.Time{now.Add(-window).Add(time.Second)},
			want:   1,
		},
		{
			name:   "future events counted",
			events: []time.Time{now.Add(time.Minute)},
			want:   1,
		},
		{
			name: "mixed",
			events: []time.Time{
				now.Add(-13 * time.Hour),
				now.Add(-6 * time.Hour),
				now.Add(-time.Minute),
				now,
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountInWindow(tt.events, now, window); got != tt.want {
				t.Errorf("CountInWindow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	window := 12 * time.Hour

	tests := []struct {
		name   string
		events []time.Time
		limit  int
		want   int
	}{
		{name: "untouched", events: nil, limit: 5, want: 5},
		{
			name:   "partially used",
			events: []time.Time{now.Add(-time.Hour), now.Add(-2 * time.Hour)},
			limit:  5,
			want:   3,
		},
		{
			name: "at ceiling",
			events: []time.Time{
				now.Add(-1 * time.Hour), now.Add(-2 * time.Hour), now.Add(-3 * time.Hour),
				now.Add(-4 * time.Hour), now.Add(-5 * time.Hour),
			},
			limit: 5,
			want:  0,
		},
		{
			name: "over ceiling clamps to zero",
			events: []time.Time{
				now, now, now, now, now, now, now,
			},
			limit: 5,
			want:  0,
		},
		{
			name:   "old events restore capacity",
			events: []time.Time{now.Add(-13 * time.Hour), now.Add(-14 * time.Hour)},
			limit:  5,
			want:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.events, now, window, tt.limit); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}
