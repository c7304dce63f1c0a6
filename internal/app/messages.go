package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/services"
)

// TickMsg is sent every tick interval to trigger recalculation.
type TickMsg struct {
	Time time.Time
}

// ResultsMsg carries freshly computed quota results.
type ResultsMsg struct {
	Results models.Results
}

// StateChangedMsg signals that the quota inputs were replaced.
type StateChangedMsg struct {
	State  models.QuotaState
	Source string
}

// SaveStateMsg requests persisting edited quota inputs.
type SaveStateMsg struct {
	State models.QuotaState
}

// SaveStateResultMsg contains the result of a save.
type SaveStateResultMsg struct {
	Error error
}

// ExportStateMsg requests writing the state to the import file.
type ExportStateMsg struct{}

// ExportStateResultMsg contains the result of an export.
type ExportStateResultMsg struct {
	Error error
}

// HistoryLoadedMsg carries history snapshots for the chart.
type HistoryLoadedMsg struct {
	Range     models.SnapshotRange
	Snapshots []models.UsageSnapshot
	Stats     *models.HistoryStats
	Error     error
}

// LoadHistoryMsg requests loading history for a range.
type LoadHistoryMsg struct {
	Range models.SnapshotRange
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}
