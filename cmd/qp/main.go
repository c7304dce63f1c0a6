// Package main is the entry point for the quotapace TUI application.
// It loads configuration, starts the service manager, and runs the
// Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgrendel/quotapace/internal/app"
	"github.com/mgrendel/quotapace/internal/config"
	"github.com/mgrendel/quotapace/internal/services"
	"github.com/mgrendel/quotapace/internal/ui/tabs/dashboard"
	"github.com/mgrendel/quotapace/internal/ui/tabs/history"
	"github.com/mgrendel/quotapace/internal/ui/tabs/settings"
	"github.com/mgrendel/quotapace/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(mgr, cfg.TickInterval)

	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state),
		history.New(state),
		settings.New(state),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`quotapace - personal usage quota pace dashboard

Usage:
  qp [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Readings)
  Tab/Shift+Tab   Navigate between tabs
  e               Export readings to the import file
  t               Cycle the history time range
  enter, s        Edit and save fields on the Readings tab
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH    SQLite database path
  IMPORT_PATH      Readings import file to watch (empty disables)
  TICK_INTERVAL    Recalculation interval (default: 1s)
  SNAPSHOT_BUCKET  History bucket width (default: 5m)
  NOTIFICATIONS    Desktop notifications on critical usage (default: true)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/quotapace/.env
  - ~/.quotapace/.env`)
}
