package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"proedualt/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// SessionWatcher watches the session file so that sign-ins and sign-outs
// made by another process reach this one as session events
type SessionWatcher struct {
	mu sync.Mutex

	file string

	lastModTime time.Time
	existed     bool

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewSessionWatcher creates a watcher for file that calls onChange after
// the file settles for debounceDelay
func NewSessionWatcher(file string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *SessionWatcher {
	if debounceDelay <= 0 {
		debounceDelay = 250 * time.Millisecond
	}
	return &SessionWatcher{
		file:          file,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. The directory is watched rather than the file so
// that atomic replacement and first creation are both observed.
func (sw *SessionWatcher) Start() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.running {
		return fmt.Errorf("session watcher is already running")
	}

	dir := filepath.Dir(sw.file)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	sw.fsWatcher = watcher

	sw.recordState()
	sw.running = true
	go sw.watchLoop()

	sw.logger.Debug("Session file watcher started", "file", sw.file, "debounce_delay", sw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (sw *SessionWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.running {
		return nil
	}

	close(sw.stopChan)
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.running = false

	if err := sw.fsWatcher.Close(); err != nil {
		sw.logger.LogError(err, "Failed to close session file watcher")
		return err
	}
	return nil
}

// IsRunning returns whether the watcher is currently running
func (sw *SessionWatcher) IsRunning() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.running
}

// Touch records the file's current state so that a write made by this
// process is not reported back as an external change
func (sw *SessionWatcher) Touch() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.recordState()
}

func (sw *SessionWatcher) recordState() {
	stat, err := os.Stat(sw.file)
	if err != nil {
		sw.existed = false
		sw.lastModTime = time.Time{}
		return
	}
	sw.existed = true
	sw.lastModTime = stat.ModTime()
}

// hasChanged compares the file against the recorded state and updates it
func (sw *SessionWatcher) hasChanged() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	stat, err := os.Stat(sw.file)
	if err != nil {
		if sw.existed {
			sw.existed = false
			sw.lastModTime = time.Time{}
			return true
		}
		return false
	}
	if !sw.existed || !stat.ModTime().Equal(sw.lastModTime) {
		sw.existed = true
		sw.lastModTime = stat.ModTime()
		return true
	}
	return false
}

func (sw *SessionWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-sw.fsWatcher.Events:
			if !ok {
				return
			}
			if sw.shouldProcessEvent(event) {
				sw.scheduleReload()
			}

		case err, ok := <-sw.fsWatcher.Errors:
			if !ok {
				return
			}
			sw.logger.LogError(err, "Session file watcher error")

		case <-sw.reloadChan:
			if sw.hasChanged() {
				sw.logger.Debug("Session file changed", "file", sw.file)
				sw.onChange()
			}

		case <-sw.stopChan:
			return
		}
	}
}

// shouldProcessEvent filters directory events down to the session file
func (sw *SessionWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(sw.file) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (sw *SessionWatcher) scheduleReload() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.running {
		return
	}
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debounceDelay, func() {
		select {
		case sw.reloadChan <- struct{}{}:
		default:
		}
	})
}
