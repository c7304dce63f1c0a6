package quota

import (
	"testing"
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

func TestCalculateMonthly_Midcycle(t *testing.T) {
	lastPayment := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

	res := CalculateMonthly(now, lastPayment)

	wantNext := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !res.NextPaymentDate.Equal(wantNext) {
		t.Errorf("NextPaymentDate = %v, want %v", res.NextPaymentDate, wantNext)
	}
	if res.TotalDaysInCycle != 31 {
		t.Errorf("TotalDaysInCycle = %d, want 31", res.TotalDaysInCycle)
	}
	if res.DaysRemaining != 16 {
		t.Errorf("DaysRemaining = %d, want 16", res.DaysRemaining)
	}
	// 15.5 of 31 days
	want := 15.5 / 31 * 100
	if !almostEqual(res.ProgressPercent, want) {
		t.Errorf("ProgressPercent = %f, want %f", res.ProgressPercent, want)
	}
}

func TestCalculateMonthly_EndOfMonthClamping(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		want time.Time
	}{
		{
			"Jan31ToFeb28",
			time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC),
		},
		{
			"Jan31ToFeb29LeapYear",
			time.Date(2028, 1, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2028, 2, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			"Mar31ToApr30",
			time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			"Dec15ToJan15",
			time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"MidMonthUnchanged",
			time.Date(2026, 5, 14, 8, 30, 0, 0, time.UTC),
			time.Date(2026, 6, 14, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateMonthly(tt.last.Add(24*time.Hour), tt.last)
			if !res.NextPaymentDate.Equal(tt.want) {
				t.Errorf("NextPaymentDate = %v, want %v", res.NextPaymentDate, tt.want)
			}
		})
	}
}

func TestCalculateMonthly_MissedPaymentGoesNegative(t *testing.T) {
	// The cycle does not roll forward past a missed payment; a stale
	// anchor simply reports negative days remaining.
	lastPayment := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	res := CalculateMonthly(now, lastPayment)

	wantNext := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	if !res.NextPaymentDate.Equal(wantNext) {
		t.Errorf("NextPaymentDate = %v, want %v (no auto-roll)", res.NextPaymentDate, wantNext)
	}
	if res.DaysRemaining != -33 {
		t.Errorf("DaysRemaining = %d, want -33", res.DaysRemaining)
	}
	if res.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %f, want 100 (clamped)", res.ProgressPercent)
	}
}

func TestCalculateMonthly_ZeroAnchorDefaultsToMonthStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	res := CalculateMonthly(now, time.Time{})

	wantNext := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !res.NextPaymentDate.Equal(wantNext) {
		t.Errorf("NextPaymentDate = %v, want %v", res.NextPaymentDate, wantNext)
	}
	if res.TotalDaysInCycle != 31 {
		t.Errorf("TotalDaysInCycle = %d, want 31", res.TotalDaysInCycle)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			"SameDayDifferentClock",
			time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			0,
		},
		{
			"NextDayEarlyClock",
			time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC),
			1,
		},
		{
			"Backwards",
			time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			-2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("daysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateAll(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	state := models.QuotaState{
		ResetTime:       "15:00",
		SessionPercent:  20,
		WindowHours:     5,
		WeeklyPercent:   30,
		WeeklyWorkDays:  5,
		WeeklyResetDate: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		SonnetPercent:   10,
		LastPaymentDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	res := CalculateAll(now, state)

	if !res.Now.Equal(now) {
		t.Errorf("Now = %v, want %v", res.Now, now)
	}
	if res.Session != CalculateSession(now, state) {
		t.Error("Session result differs from direct calculation")
	}
	if res.Weekly != CalculateWeeklyFromState(now, state) {
		t.Error("Weekly result differs from direct calculation")
	}
	if res.Sonnet != CalculateSonnetFromState(now, state) {
		t.Error("Sonnet result differs from direct calculation")
	}
	if res.Monthly != CalculateMonthly(now, state.LastPaymentDate) {
		t.Error("Monthly result differs from direct calculation")
	}
}

func TestResultsWorstStatus(t *testing.T) {
	mk := func(s1, s2, s3 models.Status) models.Results {
		var r models.Results
		r.Session.Status = s1
		r.Weekly.Status = s2
		r.Sonnet.Status = s3
		return r
	}

	tests := []struct {
		name string
		in   models.Results
		want models.Status
	}{
		{"AllOK", mk(models.StatusOK, models.StatusOK, models.StatusOK), models.StatusOK},
		{"OneWarning", mk(models.StatusOK, models.StatusWarning, models.StatusOK), models.StatusWarning},
		{"CriticalWins", mk(models.StatusWarning, models.StatusOK, models.StatusCritical), models.StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.WorstStatus(); got != tt.want {
				t.Errorf("WorstStatus = %s, want %s", got, tt.want)
			}
		})
	}
}
