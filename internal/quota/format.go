package quota

import (
	"fmt"
	"time"
)

// FormatDuration renders a span as "<H>h <M>m". Negative input renders
// as "0h 0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatRelativeTime renders t relative to the calendar day of rel:
// same day -> "15:04", adjacent days -> "Tomorrow 15:04" /
// "Yesterday 15:04", anything else -> "2 Jan 15:04".
func FormatRelativeTime(t, rel time.Time) string {
	clock := t.Format("15:04")

	switch daysBetween(rel, t) {
	case 0:
		return clock
	case 1:
		return "Tomorrow " + clock
	case -1:
		return "Yesterday " + clock
	default:
		return t.Format("2 Jan") + " " + clock
	}
}
