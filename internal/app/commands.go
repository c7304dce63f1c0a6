package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// recalculateCmd runs a full recalculation for the given instant.
func recalculateCmd(mgr *services.Manager, now time.Time) tea.Cmd {
	return func() tea.Msg {
		return ResultsMsg{Results: mgr.Recalculate(now)}
	}
}

// saveStateCmd persists edited quota inputs.
func saveStateCmd(mgr *services.Manager, state models.QuotaState) tea.Cmd {
	return func() tea.Msg {
		return SaveStateResultMsg{Error: mgr.UpdateState(state)}
	}
}

// exportStateCmd writes the current state to the import file.
func exportStateCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ExportStateResultMsg{Error: mgr.ExportState()}
	}
}

// loadHistoryCmd loads history snapshots for the given range ending now.
func loadHistoryCmd(mgr *services.Manager, r models.SnapshotRange) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()

		snaps, err := mgr.GetSnapshots(now, r)
		if err != nil {
			return HistoryLoadedMsg{Range: r, Error: err}
		}

		stats, err := mgr.GetHistoryStats(now, r)
		if err != nil {
			return HistoryLoadedMsg{Range: r, Error: err}
		}

		return HistoryLoadedMsg{Range: r, Snapshots: snaps, Stats: stats}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands provides a public interface to the command functions for tabs.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// SaveState returns a command that persists edited quota inputs.
func (c *Commands) SaveState(state models.QuotaState) tea.Cmd {
	return saveStateCmd(c.manager, state)
}

// ExportState returns a command that writes state to the import file.
func (c *Commands) ExportState() tea.Cmd {
	return exportStateCmd(c.manager)
}

// LoadHistory returns a command that loads history for a range.
func (c *Commands) LoadHistory(r models.SnapshotRange) tea.Cmd {
	return loadHistoryCmd(c.manager, r)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}
