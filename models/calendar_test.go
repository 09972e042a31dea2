package models

import (
	"testing"
	"time"
)

func TestDeadlineStateAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  time.Time
		want DeadlineState
	}{
		{"due yesterday", now.Add(-24 * time.Hour), DeadlineOverdue},
		{"due this second", now, DeadlineUrgent},
		{"due tomorrow", now.Add(24 * time.Hour), DeadlineUrgent},
		{"due in exactly 30 days", now.Add(30 * 24 * time.Hour), DeadlineUrgent},
		{"due in 31 days", now.Add(31 * 24 * time.Hour), DeadlineUpcoming},
		{"due in a year", now.AddDate(1, 0, 0), DeadlineUpcoming},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := CalendarEntry{DueDate: tc.due}
			if got := entry.DeadlineStateAt(now); got != tc.want {
				t.Errorf("DeadlineStateAt = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		nonDraft int64
		active   int64
		want     string
	}{
		{0, 10, "0.00"},
		{10, 10, "100.00"},
		{5, 10, "50.00"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{7, 0, "0.00"},
		{3, 8, "37.50"},
	}

	for _, tc := range cases {
		if got := CompletionRate(tc.nonDraft, tc.active); got != tc.want {
			t.Errorf("CompletionRate(%d, %d) = %s, want %s", tc.nonDraft, tc.active, got, tc.want)
		}
	}
}
