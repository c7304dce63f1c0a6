package quota

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"Negative", -500 * time.Millisecond, "0h 0m"},
		{"VeryNegative", -3 * time.Hour, "0h 0m"},
		{"Zero", 0, "0h 0m"},
		{"NinetyMinutes", 5400000 * time.Millisecond, "1h 30m"},
		{"SubMinute", 45 * time.Second, "0h 0m"},
		{"ExactHours", 3 * time.Hour, "3h 0m"},
		{"OverADay", 26*time.Hour + 5*time.Minute, "26h 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	rel := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"SameDay", time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC), "15:04"},
		{"SameDayEarlier", time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), "01:30"},
		{"Tomorrow", time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), "Tomorrow 09:00"},
		{"TomorrowJustPastMidnight", time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC), "Tomorrow 00:05"},
		{"Yesterday", time.Date(2026, 3, 9, 23, 45, 0, 0, time.UTC), "Yesterday 23:45"},
		{"FurtherOut", time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), "14 Mar 08:00"},
		{"FurtherBack", time.Date(2026, 2, 27, 17, 20, 0, 0, time.UTC), "27 Feb 17:20"},
		{"NextYear", time.Date(2027, 1, 2, 10, 0, 0, 0, time.UTC), "2 Jan 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.in, rel); got != tt.want {
				t.Errorf("FormatRelativeTime(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
