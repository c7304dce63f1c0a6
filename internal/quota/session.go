// Package quota implements the pure window calculators. Every function
// takes an explicit reference instant and returns a fresh result record;
// nothing in this package reads a clock, touches storage, or keeps state
// between calls.
package quota

import (
	"strconv"
	"strings"
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

// Status thresholds. These define user-visible behavior; the branch
// order in the status decisions matters near the boundaries.
const (
	// Session window: any positive deviation from the time line warns,
	// more than 10 points is critical, and a forecast above 150% of the
	// window budget is critical no matter what the deviation says.
	sessionWarnDeviation = 0.0
	sessionCritDeviation = 10.0
	sessionCritForecast  = 150.0

	// Fallback window length when the configured one is zero or negative.
	defaultWindowHours = 1.0
)

// CalculateSession computes the rolling session-window result for the
// given instant. percentUsed and windowHours are taken from the state;
// malformed values degrade to safe defaults rather than failing.
func CalculateSession(now time.Time, state models.QuotaState) models.SessionResult {
	percentUsed := models.ClampPercent(state.SessionPercent)

	windowHours := state.WindowHours
	if windowHours <= 0 {
		windowHours = defaultWindowHours
	}

	// The window always ends at the next occurrence of the daily reset
	// time, so a reset instant at or before "now" rolls forward a day.
	reset := resolveResetTime(now, state.ResetTime)
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 1)
	}

	windowLen := time.Duration(windowHours * float64(time.Hour))
	start := reset.Add(-windowLen)
	elapsed := now.Sub(start)
	elapsedHours := elapsed.Hours()

	res := models.SessionResult{
		WindowStart:      start,
		WindowEnd:        reset,
		Elapsed:          elapsed,
		WindowActive:     elapsed >= 0,
		SafeRatePerHour:  100 / windowHours,
		PercentUsed:      percentUsed,
		RemainingPercent: models.ClampPercent(100 - percentUsed),
		Status:           models.StatusOK,
	}

	// Rate stays 0 until the window has been active for a positive
	// duration; this guards both divide-by-zero and negative elapsed.
	if elapsedHours > 0 {
		res.RatePerHour = percentUsed / elapsedHours
	}

	res.ForecastPercent = res.RatePerHour * windowHours

	if res.RatePerHour > 0 {
		hoursToFinish := 100 / res.RatePerHour
		res.EstimatedFinish = start.Add(time.Duration(hoursToFinish * float64(time.Hour)))
	}

	res.TimeProgressPercent = models.ClampPercent(elapsedHours / windowHours * 100)

	deviation := percentUsed - res.TimeProgressPercent
	if deviation > sessionWarnDeviation {
		res.Status = models.StatusWarning
	}
	if deviation > sessionCritDeviation {
		res.Status = models.StatusCritical
	}
	if res.ForecastPercent > sessionCritForecast {
		res.Status = models.StatusCritical
	}

	return res
}

// resolveResetTime parses an "HH:MM" reset time against the calendar day
// of now. Unparseable input falls back to the start of the day. Seconds
// and below are zeroed for stable comparisons.
func resolveResetTime(now time.Time, resetTime string) time.Time {
	year, month, day := now.Date()

	hour, minute, ok := parseClock(resetTime)
	if !ok {
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	}
	return time.Date(year, month, day, hour, minute, 0, 0, now.Location())
}

// parseClock parses "HH:MM" with both fields in range.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
