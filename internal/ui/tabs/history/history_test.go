package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/app"
	"github.com/mgrendel/quotapace/internal/models"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedTab(t *testing.T, snaps []models.UsageSnapshot, stats *models.HistoryStats) *Model {
	t.Helper()

	m := New(app.NewState())
	m.SetSize(100, 40)
	m.Update(app.HistoryLoadedMsg{Range: models.RangeDay, Snapshots: snaps, Stats: stats})
	return m
}

func TestView_LoadingState(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	if !strings.Contains(m.View(), "Loading history") {
		t.Error("View() should show the loading message before data arrives")
	}
}

func TestView_EmptyHistory(t *testing.T) {
	m := loadedTab(t, nil, &models.HistoryStats{})

	if !strings.Contains(m.View(), "No history yet") {
		t.Error("View() should show the empty-history message")
	}
}

func TestView_RendersChartAndStats(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	snaps := []models.UsageSnapshot{
		{BucketTime: base, SessionPercent: 10, WeeklyPercent: 40},
		{BucketTime: base.Add(time.Hour), SessionPercent: 50, WeeklyPercent: 45},
		{BucketTime: base.Add(2 * time.Hour), SessionPercent: 30, WeeklyPercent: 50},
	}
	stats := &models.HistoryStats{
		BucketCount: 3, PeakSession: 50, AvgSession: 30, PeakWeekly: 50, CriticalEvents: 1,
	}

	out := loadedTab(t, snaps, stats).View()

	for _, want := range []string{"Usage History", "Session", "Weekly", "Summary", "Critical readings: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestView_LoadError(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)
	m.Update(app.HistoryLoadedMsg{Range: models.RangeDay, Error: errors.New("disk gone")})

	if !strings.Contains(m.View(), "disk gone") {
		t.Error("View() should surface the load error")
	}
}

func TestUpdate_IgnoresStaleRangeResults(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	// Result for a range the user has already cycled away from.
	m.Update(app.HistoryLoadedMsg{Range: models.RangeMonth, Snapshots: []models.UsageSnapshot{{}}})

	if m.loaded {
		t.Error("stale range result should be dropped")
	}
}

func TestCycleRange_RequestsReload(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	_, cmd := m.Update(keyMsg("t"))
	if m.timeRange != models.RangeWeek {
		t.Errorf("timeRange = %v, want week after cycling", m.timeRange)
	}
	if cmd == nil {
		t.Fatal("cycling the range should issue a load command")
	}

	msg := cmd()
	load, ok := msg.(app.LoadHistoryMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want LoadHistoryMsg", msg)
	}
	if load.Range != models.RangeWeek {
		t.Errorf("LoadHistoryMsg.Range = %v, want week", load.Range)
	}
}
