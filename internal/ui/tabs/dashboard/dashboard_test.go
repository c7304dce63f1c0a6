package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/mgrendel/quotapace/internal/app"
	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/quota"
)

func testResults(t *testing.T) models.Results {
	t.Helper()

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	state := models.QuotaState{
		ResetTime:       "17:00",
		SessionPercent:  40,
		WindowHours:     5,
		WeeklyPercent:   55,
		WeeklyResetDate: now.Add(3 * 24 * time.Hour),
		WeeklyWorkDays:  5,
		SonnetPercent:   20,
		LastPaymentDate: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		LastUpdated:     now,
	}
	return quota.CalculateAll(now, state)
}

func newTestTab(t *testing.T) *Model {
	t.Helper()

	state := app.NewState()
	state.SetResults(testResults(t))

	m := New(state)
	m.SetSize(100, 40)
	return m
}

func TestView_WaitingBeforeFirstCalculation(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	if !strings.Contains(m.View(), "Waiting") {
		t.Error("View() before results should show the waiting message")
	}
}

func TestView_RendersAllCards(t *testing.T) {
	m := newTestTab(t)
	out := m.View()

	for _, want := range []string{"Usage Pace", "Session Window", "Weekly Windows", "Billing Cycle"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing section %q", want)
		}
	}
}

func TestView_SessionDetails(t *testing.T) {
	m := newTestTab(t)
	out := m.View()

	if !strings.Contains(out, "Burn rate") {
		t.Error("View() missing burn rate line")
	}
	if !strings.Contains(out, "Forecast") {
		t.Error("View() missing forecast line")
	}
	if !strings.Contains(out, "40%") {
		t.Error("View() missing session usage percentage")
	}
}

func TestView_OverduePaymentWarning(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	state := models.QuotaState{
		// Payment date two cycles back, renewal is overdue.
		LastPaymentDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		WeeklyWorkDays:  5,
		LastUpdated:     now,
	}

	appState := app.NewState()
	appState.SetResults(quota.CalculateAll(now, state))

	m := New(appState)
	m.SetSize(100, 40)

	if !strings.Contains(m.View(), "overdue") {
		t.Error("View() should flag an overdue renewal")
	}
}

func TestView_InactiveSessionWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	state := models.QuotaState{
		// Reset at 23:00 with a 5h window; at 03:00 the window has not
		// opened yet.
		ResetTime:      "23:00",
		WindowHours:    5,
		WeeklyWorkDays: 5,
		LastUpdated:    now,
	}

	appState := app.NewState()
	appState.SetResults(quota.CalculateAll(now, state))

	m := New(appState)
	m.SetSize(100, 40)

	if !strings.Contains(m.View(), "not started") {
		t.Error("View() should say the session window has not started")
	}
}
