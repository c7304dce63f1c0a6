// Package importer watches an external state file and feeds edits into the app.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgrendel/quotapace/internal/logger"
	"github.com/mgrendel/quotapace/internal/models"
)

// Event represents an importer event.
type Event struct {
	Type   EventType
	Error  error
	State  *models.QuotaState
	Fields int
}

// EventType defines the type of importer event.
type EventType int

const (
	EventStateLoaded EventType = iota
	EventStateChanged
	EventError
)

// Service watches a JSON state file and reloads it on external change.
// The file is how readings entered elsewhere (another machine, a shell
// script scraping the vendor page) reach the dashboard without typing
// them in again.
type Service struct {
	mu            sync.RWMutex
	state         *models.QuotaState
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// defaultImportPath returns the default import file path.
func defaultImportPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quotapace", "import.json")
}

// New creates an importer watching the given file and starts the watcher.
// A missing file is not an error, it just means nothing has been
// exported yet.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		filePath = defaultImportPath()
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create import directory: %w", err)
	}

	if err := s.loadFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load import file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	if s.GetState() != nil {
		s.sendEvent(Event{Type: EventStateLoaded, State: s.GetState()})
	}

	return s, nil
}

// Events returns the event channel for subscribing to import changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the watched file path.
func (s *Service) Path() string {
	return s.filePath
}

// GetState returns a copy of the last imported state, or nil when the
// file has never been readable.
func (s *Service) GetState() *models.QuotaState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil
	}
	state := *s.state
	return &state
}

// Export writes the given state to the import file so other devices
// watching the same synced path pick it up.
func (s *Service) Export(state *models.QuotaState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.mu.Lock()
	copied := *state
	s.state = &copied
	s.mu.Unlock()

	return nil
}

// parseState decodes the import file, tolerating the loose types other
// exporters produce. Numbers may arrive as strings, timestamps as
// RFC3339, unix seconds or unix milliseconds.
func parseState(data []byte) (*models.QuotaState, int, error) {
	var raw models.RawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse import file: %w", err)
	}

	var state models.QuotaState
	applied := raw.MergeInto(&state)
	if applied == 0 {
		return nil, 0, fmt.Errorf("import file contains no recognized fields")
	}

	if state.LastUpdated.IsZero() {
		state.LastUpdated = time.Now()
	}
	return &state, applied, nil
}

// loadFile reads and parses the watched file.
func (s *Service) loadFile() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	state, fields, err := parseState(data)
	if err != nil {
		return err
	}

	logger.Debug("imported state file", "path", s.filePath, "fields", fields)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the state after an external change.
func (s *Service) handleFileChange() {
	if err := s.loadFile(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventStateChanged, State: s.GetState()})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
