// Package models defines data structures and domain types.
package models

import "time"

// Status indicates how the current pace compares to the window budget.
type Status string

const (
	StatusOK       Status = "OK"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Severity orders statuses for comparison, higher is worse.
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// SessionResult is the output of the rolling session-window calculator.
// It is a pure, immutable snapshot recomputed from scratch on every tick.
type SessionResult struct {
	WindowStart time.Time
	WindowEnd   time.Time

	// Elapsed is how far into the window "now" is. Negative when the
	// window has not started yet.
	Elapsed      time.Duration
	WindowActive bool

	RatePerHour     float64 // observed consumption, %/hr
	SafeRatePerHour float64 // rate that exactly exhausts quota at window end
	ForecastPercent float64 // projected total usage at window end, unclamped

	PercentUsed      float64
	RemainingPercent float64

	// EstimatedFinish is when the quota hits 100% at the current rate.
	// Zero when the rate is zero or the window has not started.
	EstimatedFinish time.Time

	TimeProgressPercent float64
	Status              Status
}

// HasEstimate reports whether an estimated finish time exists.
func (r *SessionResult) HasEstimate() bool {
	return !r.EstimatedFinish.IsZero()
}

// WeeklyResult is the output of the 7-day window calculator.
type WeeklyResult struct {
	WindowStart time.Time
	ResetDate   time.Time

	PercentUsed         float64
	TimeProgressPercent float64

	// BenchmarkPercent is the expected usage if quota were spent evenly
	// across the configured workdays. Saturates at 100.
	BenchmarkPercent float64

	DailyPace        float64 // observed consumption, %/day
	MaxSafeDailyPace float64 // 100 / workdays
	WorkDays         int

	DaysRemaining  int
	HoursRemaining int

	Status Status
}

// MonthlyResult is the output of the billing-cycle calculator.
type MonthlyResult struct {
	ProgressPercent float64
	NextPaymentDate time.Time

	// DaysRemaining may go negative once a payment date has passed; the
	// cycle deliberately does not roll forward on its own.
	DaysRemaining    int
	TotalDaysInCycle int
}

// Results bundles one tick's worth of calculator output for the UI.
type Results struct {
	Now     time.Time
	Session SessionResult
	Weekly  WeeklyResult
	Sonnet  WeeklyResult
	Monthly MonthlyResult
}

// WorstStatus returns the most severe status across all windows.
func (r *Results) WorstStatus() Status {
	worst := StatusOK
	for _, s := range []Status{r.Session.Status, r.Weekly.Status, r.Sonnet.Status} {
		switch {
		case s == StatusCritical:
			return StatusCritical
		case s == StatusWarning && worst == StatusOK:
			worst = StatusWarning
		}
	}
	return worst
}
