// Package settings provides the readings entry form tab.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/app"
	"github.com/mgrendel/quotapace/internal/models"
)

// dateLayout is the accepted format for date fields.
const dateLayout = "2006-01-02"

// Field indices into the form.
const (
	fieldResetTime = iota
	fieldSessionPercent
	fieldWindowHours
	fieldWeeklyPercent
	fieldWeeklyResetDate
	fieldWorkDays
	fieldSonnetPercent
	fieldSonnetResetDate
	fieldPaymentDate
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Session reset time (HH:MM)",
	"Session used %",
	"Session window hours",
	"Weekly used %",
	"Weekly reset date (YYYY-MM-DD)",
	"Workdays per week (1-7)",
	"Sonnet used %",
	"Sonnet reset date (optional)",
	"Last payment date (YYYY-MM-DD)",
}

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Save   key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next field"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit field"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save readings"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
	}
}

// Model represents the settings tab state.
type Model struct {
	state  *app.State
	keys   keyMap
	inputs [fieldCount]textinput.Model

	focusIndex int
	editing    bool
	dirty      bool

	width  int
	height int
}

// New creates a new settings model seeded from the current state.
func New(state *app.State) *Model {
	m := &Model{
		state: state,
		keys:  defaultKeyMap(),
	}

	for i := 0; i < fieldCount; i++ {
		in := textinput.New()
		in.CharLimit = 20
		in.Width = 16
		in.Prompt = ""
		m.inputs[i] = in
	}

	m.inputs[fieldSessionPercent].Validate = numericUpTo(100)
	m.inputs[fieldWeeklyPercent].Validate = numericUpTo(100)
	m.inputs[fieldSonnetPercent].Validate = numericUpTo(100)
	m.inputs[fieldWindowHours].Validate = numericUpTo(models.MaxWindowHours)
	m.inputs[fieldWorkDays].Validate = numericUpTo(models.MaxWorkDays)

	m.seedFromState(state.GetQuotaState())
	return m
}

// seedFromState fills the inputs from the persisted readings.
func (m *Model) seedFromState(q models.QuotaState) {
	m.inputs[fieldResetTime].SetValue(q.ResetTime)
	m.inputs[fieldSessionPercent].SetValue(formatFloat(q.SessionPercent))
	m.inputs[fieldWindowHours].SetValue(formatFloat(q.WindowHours))
	m.inputs[fieldWeeklyPercent].SetValue(formatFloat(q.WeeklyPercent))
	m.inputs[fieldWeeklyResetDate].SetValue(formatDate(q.WeeklyResetDate))
	m.inputs[fieldWorkDays].SetValue(formatInt(q.WeeklyWorkDays))
	m.inputs[fieldSonnetPercent].SetValue(formatFloat(q.SonnetPercent))
	m.inputs[fieldSonnetResetDate].SetValue(formatDate(q.SonnetResetDate))
	m.inputs[fieldPaymentDate].SetValue(formatDate(q.LastPaymentDate))
	m.dirty = false
}

// buildState assembles a QuotaState from the form, coercing garbage to
// safe defaults the same way imports do.
func (m *Model) buildState() models.QuotaState {
	prev := m.state.GetQuotaState()

	state := models.QuotaState{
		ResetTime:       strings.TrimSpace(m.inputs[fieldResetTime].Value()),
		SessionPercent:  models.CoerceFloat(m.inputs[fieldSessionPercent].Value()),
		WindowHours:     models.CoerceFloat(m.inputs[fieldWindowHours].Value()),
		WeeklyPercent:   models.CoerceFloat(m.inputs[fieldWeeklyPercent].Value()),
		WeeklyResetDate: parseDate(m.inputs[fieldWeeklyResetDate].Value(), prev.WeeklyResetDate),
		WeeklyWorkDays:  models.CoerceWorkDays(m.inputs[fieldWorkDays].Value()),
		SonnetPercent:   models.CoerceFloat(m.inputs[fieldSonnetPercent].Value()),
		SonnetResetDate: parseDate(m.inputs[fieldSonnetResetDate].Value(), prev.SonnetResetDate),
		LastPaymentDate: parseDate(m.inputs[fieldPaymentDate].Value(), prev.LastPaymentDate),
		LastUpdated:     time.Now(),
	}

	state.ClampInputs()
	return state
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the form is consuming raw keys.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case app.StateChangedMsg:
		// External change (import) overwrites unsaved edits only when
		// the form is untouched.
		if !m.dirty {
			m.seedFromState(msg.State)
		}

	case app.SaveStateResultMsg:
		if msg.Error == nil {
			m.seedFromState(m.state.GetQuotaState())
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		return m.handleEditingKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.focusIndex = (m.focusIndex - 1 + fieldCount) % fieldCount

	case key.Matches(msg, m.keys.Down):
		m.focusIndex = (m.focusIndex + 1) % fieldCount

	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		m.inputs[m.focusIndex].Focus()
		m.inputs[m.focusIndex].CursorEnd()

	case key.Matches(msg, m.keys.Save):
		state := m.buildState()
		return func() tea.Msg { return app.SaveStateMsg{State: state} }
	}

	return nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.inputs[m.focusIndex].Blur()
		m.editing = false
		m.dirty = true
		m.focusIndex = (m.focusIndex + 1) % fieldCount
		return nil

	case tea.KeyEscape:
		m.inputs[m.focusIndex].Blur()
		m.editing = false
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return cmd
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns key bindings for the help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Edit, m.keys.Save, m.keys.Up, m.keys.Down}
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// numericUpTo rejects keystrokes that would take a numeric field out of
// [0, limit]. Empty is allowed so the field can be cleared.
func numericUpTo(limit float64) textinput.ValidateFunc {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", raw)
		}
		if v < 0 || v > limit {
			return fmt.Errorf("out of range: %v", v)
		}
		return nil
	}
}

// parseDate accepts YYYY-MM-DD; an empty field clears the date, an
// unparseable one keeps the previous value.
func parseDate(raw string, previous time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return previous
	}
	return t
}
