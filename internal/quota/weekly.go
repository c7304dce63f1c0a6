package quota

import (
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

const (
	// Weekly window: more than 15 points over the workday benchmark is
	// critical, more than 5 warns, and so does a daily pace above 1.2x
	// the rate that would exactly exhaust the quota.
	weeklyWarnDeviation  = 5.0
	weeklyCritDeviation  = 15.0
	weeklyPaceWarnFactor = 1.2

	weeklyWindow = 7 * 24 * time.Hour
)

// CalculateWeekly computes the 7-day window result for the given
// instant. The window is anchored purely by the configured reset date:
// it always spans exactly the 7 calendar days ending at that instant.
// workDays outside [1,7] falls back to 5; a zero resetDate defaults to
// one week from now.
func CalculateWeekly(now time.Time, percentUsed float64, workDays int, resetDate time.Time) models.WeeklyResult {
	percentUsed = models.ClampPercent(percentUsed)

	if workDays <= 0 {
		workDays = models.DefaultWorkDays
	}
	if workDays > models.MaxWorkDays {
		workDays = models.MaxWorkDays
	}

	if resetDate.IsZero() {
		resetDate = now.Add(weeklyWindow)
	}

	start := resetDate.Add(-weeklyWindow)
	elapsed := now.Sub(start)
	elapsedDays := elapsed.Hours() / 24

	res := models.WeeklyResult{
		WindowStart:         start,
		ResetDate:           resetDate,
		PercentUsed:         percentUsed,
		TimeProgressPercent: models.ClampPercent(float64(elapsed) / float64(weeklyWindow) * 100),
		MaxSafeDailyPace:    100 / float64(workDays),
		WorkDays:            workDays,
		Status:              models.StatusOK,
	}

	// The benchmark assumes quota is spent evenly across the workdays
	// only, so it saturates at 100 once elapsed days exceed workdays.
	res.BenchmarkPercent = models.ClampPercent(elapsedDays * (100 / float64(workDays)))

	if elapsedDays > 0 {
		res.DailyPace = percentUsed / elapsedDays
	}

	deviation := percentUsed - res.BenchmarkPercent
	switch {
	case deviation > weeklyCritDeviation:
		res.Status = models.StatusCritical
	case deviation > weeklyWarnDeviation:
		res.Status = models.StatusWarning
	case res.DailyPace > res.MaxSafeDailyPace*weeklyPaceWarnFactor:
		res.Status = models.StatusWarning
	}

	remaining := resetDate.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	res.DaysRemaining = int(remaining / (24 * time.Hour))
	res.HoursRemaining = int((remaining % (24 * time.Hour)) / time.Hour)

	return res
}

// CalculateWeeklyFromState runs the weekly calculator for the overall
// weekly quota in the state snapshot.
func CalculateWeeklyFromState(now time.Time, state models.QuotaState) models.WeeklyResult {
	return CalculateWeekly(now, state.WeeklyPercent, state.WeeklyWorkDays, state.WeeklyResetDate)
}

// CalculateSonnetFromState runs the same weekly calculator for the
// Sonnet sub-quota. Same algorithm, independently parameterized.
func CalculateSonnetFromState(now time.Time, state models.QuotaState) models.WeeklyResult {
	return CalculateWeekly(now, state.SonnetPercent, state.WeeklyWorkDays, state.SonnetReset())
}
