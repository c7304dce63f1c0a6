package quota

import (
	"math"
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

// CalculateMonthly computes the billing-cycle result for the given
// instant. A zero lastPayment defaults to the start of the current
// month. The next payment is one calendar month after the anchor, with
// the day-of-month clamped (Jan 31 -> Feb 28/29). The cycle does not
// roll forward past a missed payment; DaysRemaining goes negative
// instead.
func CalculateMonthly(now time.Time, lastPayment time.Time) models.MonthlyResult {
	if lastPayment.IsZero() {
		year, month, _ := now.Date()
		lastPayment = time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	}

	nextPayment := addCalendarMonth(lastPayment)

	progress := 0.0
	if total := nextPayment.Sub(lastPayment); total > 0 {
		progress = models.ClampPercent(float64(now.Sub(lastPayment)) / float64(total) * 100)
	}

	return models.MonthlyResult{
		ProgressPercent:  progress,
		NextPaymentDate:  nextPayment,
		DaysRemaining:    daysBetween(now, nextPayment),
		TotalDaysInCycle: daysBetween(lastPayment, nextPayment),
	}
}

// addCalendarMonth advances one calendar month, clamping the day to the
// target month's length instead of letting it overflow the way
// time.AddDate would (Jan 31 + AddDate(0,1,0) = Mar 2/3).
func addCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// Day 0 of month+2 is the last day of month+1.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month+1, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysBetween returns the calendar-day difference b-a, ignoring the
// time of day on both sides. Rounding absorbs DST-shortened days.
func daysBetween(a, b time.Time) int {
	a = startOfDay(a)
	b = startOfDay(b)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// CalculateAll runs every calculator against one state snapshot and
// reference instant, producing the immutable bundle the UI renders.
func CalculateAll(now time.Time, state models.QuotaState) models.Results {
	return models.Results{
		Now:     now,
		Session: CalculateSession(now, state),
		Weekly:  CalculateWeeklyFromState(now, state),
		Sonnet:  CalculateSonnetFromState(now, state),
		Monthly: CalculateMonthly(now, state.LastPaymentDate),
	}
}
