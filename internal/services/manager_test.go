package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mgrendel/quotapace/internal/config"
	"github.com/mgrendel/quotapace/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "quotapace.db"),
		TickInterval:    time.Second,
		SnapshotBucket:  5 * time.Minute,
		Notifications:   false,
		DefaultWorkDays: 5,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(testConfig(t))
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestNewManager_DefaultState(t *testing.T) {
	m := newTestManager(t)

	state := m.GetState()
	if state.WeeklyWorkDays != 5 {
		t.Errorf("WeeklyWorkDays = %d, want config default 5", state.WeeklyWorkDays)
	}
	if state.SessionPercent != 0 {
		t.Errorf("SessionPercent = %v, want 0", state.SessionPercent)
	}
}

func TestUpdateState_PersistsAndBroadcasts(t *testing.T) {
	m := newTestManager(t)

	ch, _ := m.Subscribe()
	defer m.Unsubscribe(ch)

	now := time.Now()
	err := m.UpdateState(models.QuotaState{
		ResetTime:      "17:00",
		SessionPercent: 40,
		WindowHours:    5,
		WeeklyPercent:  55,
		WeeklyWorkDays: 5,
		LastUpdated:    now,
	})
	if err != nil {
		t.Fatalf("UpdateState() error: %v", err)
	}

	if got := m.GetState().SessionPercent; got != 40 {
		t.Errorf("GetState().SessionPercent = %v, want 40", got)
	}

	select {
	case event := <-ch:
		changed, ok := event.(StateChangedEvent)
		if !ok {
			t.Fatalf("event = %T, want StateChangedEvent", event)
		}
		if changed.Source != "settings" {
			t.Errorf("Source = %q, want settings", changed.Source)
		}
		if changed.State.SessionPercent != 40 {
			t.Errorf("event state percent = %v, want 40", changed.State.SessionPercent)
		}
	case <-time.After(time.Second):
		t.Fatal("no StateChangedEvent received")
	}

	loaded, err := m.Database().LoadState(now)
	if err != nil {
		t.Fatalf("LoadState() error: %v", err)
	}
	if loaded == nil || loaded.SessionPercent != 40 {
		t.Errorf("persisted state = %+v, want SessionPercent 40", loaded)
	}
}

func TestUpdateState_ClampsInput(t *testing.T) {
	m := newTestManager(t)

	if err := m.UpdateState(models.QuotaState{SessionPercent: 150, WeeklyPercent: -5, WeeklyWorkDays: 12}); err != nil {
		t.Fatalf("UpdateState() error: %v", err)
	}

	state := m.GetState()
	if state.SessionPercent != 100 {
		t.Errorf("SessionPercent = %v, want clamped to 100", state.SessionPercent)
	}
	if state.WeeklyPercent != 0 {
		t.Errorf("WeeklyPercent = %v, want clamped to 0", state.WeeklyPercent)
	}
	if state.WeeklyWorkDays != models.MaxWorkDays {
		t.Errorf("WeeklyWorkDays = %d, want clamped to %d", state.WeeklyWorkDays, models.MaxWorkDays)
	}
}

func TestRecalculate_RecordsSnapshotAndBroadcasts(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := m.UpdateState(models.QuotaState{
		ResetTime:      "17:00",
		SessionPercent: 30,
		WindowHours:    5,
		WeeklyPercent:  45,
		WeeklyResetDate: now.Add(4 * 24 * time.Hour),
		WeeklyWorkDays: 5,
		LastUpdated:    now,
	}); err != nil {
		t.Fatalf("UpdateState() error: %v", err)
	}

	ch, _ := m.Subscribe()
	defer m.Unsubscribe(ch)

	results := m.Recalculate(now)
	if results.Session.PercentUsed != 30 {
		t.Errorf("Session.PercentUsed = %v, want 30", results.Session.PercentUsed)
	}
	if !results.Now.Equal(now) {
		t.Errorf("Results.Now = %v, want %v", results.Now, now)
	}

	gotResults := false
	deadline := time.After(time.Second)
	for !gotResults {
		select {
		case event := <-ch:
			if _, ok := event.(ResultsEvent); ok {
				gotResults = true
			}
		case <-deadline:
			t.Fatal("no ResultsEvent received")
		}
	}

	snaps, err := m.GetSnapshots(now, models.RangeDay)
	if err != nil {
		t.Fatalf("GetSnapshots() error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if snaps[0].SessionPercent != 30 {
		t.Errorf("snapshot SessionPercent = %v, want 30", snaps[0].SessionPercent)
	}
	if want := now.Truncate(5 * time.Minute); !snaps[0].BucketTime.Equal(want) {
		t.Errorf("BucketTime = %v, want %v", snaps[0].BucketTime, want)
	}
}

func TestRecalculate_ThrottlesSnapshots(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := m.UpdateState(models.QuotaState{SessionPercent: 10, WeeklyWorkDays: 5, LastUpdated: now}); err != nil {
		t.Fatalf("UpdateState() error: %v", err)
	}

	m.Recalculate(now)
	m.Recalculate(now.Add(time.Second))
	m.Recalculate(now.Add(2 * time.Second))

	snaps, err := m.GetSnapshots(now, models.RangeDay)
	if err != nil {
		t.Fatalf("GetSnapshots() error: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots, want 1 (ticks within the bucket throttled)", len(snaps))
	}
	if snaps[0].SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", snaps[0].SampleCount)
	}
}

func TestStatePersistsAcrossManagers(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now()

	m1, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	if err := m1.UpdateState(models.QuotaState{ResetTime: "08:30", SessionPercent: 22, WeeklyWorkDays: 6, LastUpdated: now}); err != nil {
		t.Fatalf("UpdateState() error: %v", err)
	}
	if err := m1.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	m2, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager() reopen error: %v", err)
	}
	defer func() { _ = m2.Close() }()

	state := m2.GetState()
	if state.ResetTime != "08:30" || state.SessionPercent != 22 || state.WeeklyWorkDays != 6 {
		t.Errorf("reloaded state = %+v, want saved values", state)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := newTestManager(t)

	ch, _ := m.Subscribe()
	m.Unsubscribe(ch)

	// Channel is closed on unsubscribe.
	select {
	case _, open := <-ch:
		if open {
			t.Error("expected closed channel after Unsubscribe")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after Unsubscribe")
	}
}
