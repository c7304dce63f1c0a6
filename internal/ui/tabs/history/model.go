// Package history provides the usage history chart tab.
package history

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/app"
	"github.com/mgrendel/quotapace/internal/models"
)

// refreshInterval is how often the chart reloads on its own.
const refreshInterval = time.Minute

type refreshTickMsg time.Time

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	CycleRange key.Binding
	Refresh    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CycleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state *app.State
	keys  keyMap

	timeRange models.SnapshotRange
	snapshots []models.UsageSnapshot
	stats     *models.HistoryStats
	loadErr   error
	loaded    bool

	width  int
	height int
}

// New creates a new history model.
func New(state *app.State) *Model {
	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		timeRange: models.RangeDay,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), refreshTickCmd())
}

func (m *Model) loadCmd() tea.Cmd {
	r := m.timeRange
	return func() tea.Msg {
		return app.LoadHistoryMsg{Range: r}
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case refreshTickMsg:
		return m, tea.Batch(m.loadCmd(), refreshTickCmd())

	case app.HistoryLoadedMsg:
		if msg.Range != m.timeRange {
			return m, nil
		}
		m.loaded = true
		m.loadErr = msg.Error
		if msg.Error == nil {
			m.snapshots = msg.Snapshots
			m.stats = msg.Stats
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.CycleRange):
		m.timeRange = m.timeRange.Next()
		m.loaded = false
		return m.loadCmd()

	case key.Matches(msg, m.keys.Refresh):
		return m.loadCmd()
	}
	return nil
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns key bindings for the help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.CycleRange, m.keys.Refresh}
}
