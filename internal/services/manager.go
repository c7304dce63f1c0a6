// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/mgrendel/quotapace/internal/config"
	"github.com/mgrendel/quotapace/internal/db"
	"github.com/mgrendel/quotapace/internal/logger"
	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/quota"
	"github.com/mgrendel/quotapace/internal/services/importer"
)

type (
	// StateChangedEvent is emitted when the quota state is replaced,
	// whether by the settings form or by an external import.
	StateChangedEvent struct {
		State  *models.QuotaState
		Source string // "settings", "import", "load"
	}

	// ResultsEvent is emitted after each recalculation.
	ResultsEvent struct {
		Results models.Results
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (StateChangedEvent) isServiceEvent() {}
func (ResultsEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()        {}

// Manager owns the persisted state, the importer and the database, and
// routes their events to the TUI.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	state       models.QuotaState
	database    *db.DB
	importer    *importer.Service
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	lastWorst    models.Status
	lastSnapshot time.Time
}

// NewManager creates a new service manager, loading any persisted state.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		lastWorst: models.StatusOK,
	}
	m.state.WeeklyWorkDays = cfg.DefaultWorkDays

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if loaded, err := m.database.LoadState(time.Now()); err != nil {
		logger.Warn("failed to load persisted state", "error", err)
	} else if loaded != nil {
		m.state = *loaded
	}

	if cfg.ImportPath != "" {
		m.importer, err = importer.New(cfg.ImportPath)
		if err != nil {
			_ = m.database.Close()
			return nil, fmt.Errorf("failed to initialize importer: %w", err)
		}
		go m.routeEvents()
	}

	return m, nil
}

// routeEvents routes importer events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.importer.Events():
			m.handleImportEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleImportEvent(event importer.Event) {
	switch event.Type {
	case importer.EventStateLoaded, importer.EventStateChanged:
		if event.State == nil {
			return
		}
		if err := m.applyState(*event.State, "import"); err != nil {
			m.broadcast(ErrorEvent{Service: "importer", Error: err})
		}

	case importer.EventError:
		m.broadcast(ErrorEvent{Service: "importer", Error: event.Error})
	}
}

// GetState returns a copy of the current quota state.
func (m *Manager) GetState() models.QuotaState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// UpdateState replaces the current state, persists it and notifies
// subscribers. Called by the settings form on save.
func (m *Manager) UpdateState(state models.QuotaState) error {
	return m.applyState(state, "settings")
}

func (m *Manager) applyState(state models.QuotaState, source string) error {
	state.ClampInputs()
	if state.LastUpdated.IsZero() {
		state.LastUpdated = time.Now()
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	if err := m.database.SaveState(&state); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	m.broadcast(StateChangedEvent{State: &state, Source: source})
	return nil
}

// ExportState writes the current state to the import file, if an import
// path is configured.
func (m *Manager) ExportState() error {
	if m.importer == nil {
		return fmt.Errorf("no import path configured")
	}
	state := m.GetState()
	return m.importer.Export(&state)
}

// Recalculate recomputes all quota results for the given instant,
// records a history snapshot and fires notifications on status
// escalation. The dashboard calls this every tick.
func (m *Manager) Recalculate(now time.Time) models.Results {
	state := m.GetState()
	results := quota.CalculateAll(now, state)

	m.recordSnapshot(now, &state, &results)
	m.checkNotifications(&results)

	m.broadcast(ResultsEvent{Results: results})
	return results
}

// recordSnapshot folds the current reading into the history table, at
// most once per bucket interval.
func (m *Manager) recordSnapshot(now time.Time, state *models.QuotaState, results *models.Results) {
	m.mu.Lock()
	if now.Sub(m.lastSnapshot) < m.cfg.SnapshotBucket/2 {
		m.mu.Unlock()
		return
	}
	m.lastSnapshot = now
	m.mu.Unlock()

	snap := models.UsageSnapshot{
		BucketTime:     now.Truncate(m.cfg.SnapshotBucket),
		SessionPercent: state.SessionPercent,
		WeeklyPercent:  state.WeeklyPercent,
		SonnetPercent:  state.SonnetPercent,
		SessionStatus:  results.Session.Status,
		WeeklyStatus:   results.Weekly.Status,
	}
	if err := m.database.UpsertUsageSnapshot(&snap); err != nil {
		logger.Warn("failed to record usage snapshot", "error", err)
	}
}

// checkNotifications sends a desktop notification when the overall
// status escalates to CRITICAL. Only the transition notifies, a state
// that stays critical is silent.
func (m *Manager) checkNotifications(results *models.Results) {
	worst := results.WorstStatus()

	m.mu.Lock()
	previous := m.lastWorst
	m.lastWorst = worst
	m.mu.Unlock()

	if !m.cfg.Notifications {
		return
	}

	if worst == models.StatusCritical && previous != models.StatusCritical {
		body := notificationBody(results)
		if err := beeep.Notify("quotapace: usage running hot", body, ""); err != nil {
			logger.Warn("failed to send notification", "error", err)
		}
	}
}

func notificationBody(results *models.Results) string {
	switch {
	case results.Session.Status == models.StatusCritical:
		return fmt.Sprintf("Session usage at %.0f%%, on pace for %.0f%% by reset.",
			results.Session.PercentUsed, results.Session.ForecastPercent)
	case results.Weekly.Status == models.StatusCritical:
		return fmt.Sprintf("Weekly usage at %.0f%% against a %.0f%% benchmark.",
			results.Weekly.PercentUsed, results.Weekly.BenchmarkPercent)
	case results.Sonnet.Status == models.StatusCritical:
		return fmt.Sprintf("Sonnet usage at %.0f%% against a %.0f%% benchmark.",
			results.Sonnet.PercentUsed, results.Sonnet.BenchmarkPercent)
	default:
		return "Usage is ahead of the sustainable pace."
	}
}

// GetSnapshots returns history snapshots for the given range ending now.
func (m *Manager) GetSnapshots(now time.Time, r models.SnapshotRange) ([]models.UsageSnapshot, error) {
	return m.database.GetSnapshotsSince(now.Add(-r.Duration()))
}

// GetHistoryStats summarizes history for the given range ending now.
func (m *Manager) GetHistoryStats(now time.Time, r models.SnapshotRange) (*models.HistoryStats, error) {
	return m.database.GetHistoryStats(now.Add(-r.Duration()))
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Importer returns the importer service, nil when no import path is set.
func (m *Manager) Importer() *importer.Service {
	return m.importer
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.importer != nil {
		if err := m.importer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
