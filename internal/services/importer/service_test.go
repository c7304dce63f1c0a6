package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

func writeImportFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}
}

func TestParseState_LooseTypes(t *testing.T) {
	data := []byte(`{
		"resetTime": "17:30",
		"sessionPercent": "42.5",
		"windowHours": 5,
		"weeklyPercent": 61,
		"weeklyResetDate": "2026-03-13T09:00:00Z",
		"weeklyWorkDays": "6",
		"sonnetPercent": 12,
		"lastUpdated": 1773580800000
	}`)

	state, fields, err := parseState(data)
	if err != nil {
		t.Fatalf("parseState() error: %v", err)
	}
	if fields != 8 {
		t.Errorf("applied %d fields, want 8", fields)
	}
	if state.ResetTime != "17:30" {
		t.Errorf("ResetTime = %q, want 17:30", state.ResetTime)
	}
	if state.SessionPercent != 42.5 {
		t.Errorf("SessionPercent = %v, want 42.5 (string coerced)", state.SessionPercent)
	}
	if state.WeeklyWorkDays != 6 {
		t.Errorf("WeeklyWorkDays = %d, want 6", state.WeeklyWorkDays)
	}
	want := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)
	if !state.WeeklyResetDate.Equal(want) {
		t.Errorf("WeeklyResetDate = %v, want %v", state.WeeklyResetDate, want)
	}
	if state.LastUpdated.IsZero() {
		t.Error("LastUpdated should be parsed from unix milliseconds")
	}
}

func TestParseState_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "definitely not json"},
		{"no recognized fields", `{"foo": 1, "bar": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseState([]byte(tt.data)); err == nil {
				t.Error("parseState() expected error, got nil")
			}
		})
	}
}

func TestNew_MissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if state := svc.GetState(); state != nil {
		t.Errorf("GetState() = %+v, want nil before any import", state)
	}
}

func TestNew_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	writeImportFile(t, path, `{"sessionPercent": 33, "weeklyPercent": 50}`)

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	state := svc.GetState()
	if state == nil {
		t.Fatal("GetState() = nil, want loaded state")
	}
	if state.SessionPercent != 33 || state.WeeklyPercent != 50 {
		t.Errorf("GetState() = %+v, want percents 33/50", state)
	}

	select {
	case event := <-svc.Events():
		if event.Type != EventStateLoaded {
			t.Errorf("event type = %d, want EventStateLoaded", event.Type)
		}
	case <-time.After(time.Second):
		t.Error("no EventStateLoaded received")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	writeImportFile(t, path, `{"sessionPercent": 77}`)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == EventError {
				t.Fatalf("unexpected error event: %v", event.Error)
			}
			if event.Type == EventStateChanged {
				if event.State == nil || event.State.SessionPercent != 77 {
					t.Fatalf("EventStateChanged state = %+v, want SessionPercent 77", event.State)
				}
				return
			}
		case <-deadline:
			t.Fatal("no EventStateChanged after external write")
		}
	}
}

func TestWatcher_BadFileEmitsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	writeImportFile(t, path, "{broken")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == EventError {
				return
			}
		case <-deadline:
			t.Fatal("no EventError after writing a broken file")
		}
	}
}

func TestExport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	state := svc.GetState()
	if state != nil {
		t.Fatal("GetState() before export should be nil")
	}

	export := &models.QuotaState{
		ResetTime:      "09:00",
		SessionPercent: 25,
		WindowHours:    5,
		WeeklyPercent:  48,
		WeeklyWorkDays: 5,
		LastUpdated:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := svc.Export(export); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read exported file: %v", err)
	}

	parsed, _, err := parseState(data)
	if err != nil {
		t.Fatalf("parseState(exported) error: %v", err)
	}
	if parsed.SessionPercent != export.SessionPercent || parsed.ResetTime != export.ResetTime {
		t.Errorf("exported state round-trip = %+v, want %+v", parsed, export)
	}
	if got := svc.GetState(); got == nil || got.SessionPercent != export.SessionPercent {
		t.Errorf("GetState() after export = %+v", got)
	}
}
