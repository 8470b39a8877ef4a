package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marco/videoSort/internal/magic"
)

// FileHandler is called when a new file is detected and ready for processing
type FileHandler func(file FileInfo) error

// Watcher monitors directories for new video files
type Watcher struct {
	scanner       *Scanner
	directories   []string
	debounceDelay time.Duration
	recursive     bool
	handler       FileHandler
	watcher       *fsnotify.Watcher
	stopChan      chan struct{}
	doneChan      chan struct{}

	// Debouncing state
	mu            sync.Mutex
	pendingTimers map[string]*time.Timer
}

// WatcherConfig holds configuration for the file watcher
type WatcherConfig struct {
	Directories   []string
	Extensions    []string
	ExcludeDirs   []string
	DebounceDelay time.Duration // How long to wait after last event before processing
	Recursive     bool          // Watch subdirectories
}

// NewWatcher creates a new directory watcher
func NewWatcher(cfg WatcherConfig, handler FileHandler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	s := New(cfg.Extensions, cfg.ExcludeDirs, cfg.Recursive)

	return &Watcher{
		scanner:       s,
		directories:   cfg.Directories,
		debounceDelay: cfg.DebounceDelay,
		recursive:     cfg.Recursive,
		handler:       handler,
		watcher:       fsWatcher,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
		pendingTimers: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching directories for changes
func (w *Watcher) Start() error {
	for _, dir := range w.directories {
		if err := w.addDirectory(dir); err != nil {
			slog.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}

	go w.processEvents()

	slog.Info("file watcher started",
		"directories", len(w.directories),
		"debounce_seconds", w.debounceDelay.Seconds(),
		"recursive", w.recursive,
	)

	return nil
}

// Stop stops watching directories
func (w *Watcher) Stop() error {
	close(w.stopChan)
	<-w.doneChan // Wait for event loop to finish

	// Cancel any pending timers
	w.mu.Lock()
	for _, timer := range w.pendingTimers {
		timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

// Wait blocks until the watcher is stopped
func (w *Watcher) Wait() {
	<-w.doneChan
}

// addDirectory adds a directory (and optionally subdirectories) to watch
func (w *Watcher) addDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}

	if w.recursive {
		// Walk directory tree and add all subdirectories
		return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // Skip directories we can't access
			}
			if info.IsDir() {
				if w.scanner.IsExcludedDir(p) {
					slog.Debug("skipping excluded directory", "path", p)
					return filepath.SkipDir
				}
				if err := w.watcher.Add(p); err != nil {
					slog.Warn("failed to add directory to watch", "path", p, "error", err)
				} else {
					slog.Debug("watching directory", "path", p)
				}
			}
			return nil
		})
	}

	if err := w.watcher.Add(path); err != nil {
		return fmt.Errorf("failed to add directory to watch: %w", err)
	}
	slog.Debug("watching directory", "path", path)
	return nil
}

// processEvents handles fsnotify events
func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single fsnotify event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// Handle directory creation (for recursive watching)
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.recursive && !w.scanner.IsExcludedDir(path) {
				if err := w.addDirectory(path); err != nil {
					slog.Warn("failed to add new directory to watch", "path", path, "error", err)
				} else {
					slog.Info("new directory detected, now watching", "path", path)
				}
			}
			return
		}
	}

	filename := filepath.Base(path)
	if !w.scanner.IsMediaFile(filename) {
		return
	}

	// Creation and write events both reset the debounce window, so a file
	// still being copied in is not processed until writes go quiet.
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		slog.Debug("file event detected",
			"event", event.Op.String(),
			"file", filename,
		)
		w.scheduleProcessing(path)
	}
}

// scheduleProcessing schedules a file for processing after debounce delay
func (w *Watcher) scheduleProcessing(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.pendingTimers[path]; exists {
		timer.Stop()
	}

	w.pendingTimers[path] = time.AfterFunc(w.debounceDelay, func() {
		w.processFile(path)
	})

	slog.Debug("file scheduled for processing",
		"file", filepath.Base(path),
		"debounce_seconds", w.debounceDelay.Seconds(),
	)
}

// processFile processes a single file after debounce period
func (w *Watcher) processFile(path string) {
	w.mu.Lock()
	delete(w.pendingTimers, path)
	w.mu.Unlock()

	// Verify file still exists (might have been moved/deleted)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("file no longer exists, skipping", "path", path)
			return
		}
		slog.Error("failed to stat file", "path", path, "error", err)
		return
	}
	if info.IsDir() {
		return
	}

	fileType, err := magic.DetectFile(path)
	if err != nil {
		slog.Error("failed to sniff file type", "path", path, "error", err)
		return
	}
	if fileType == magic.Unknown {
		slog.Debug("unknown magic, skipping", "path", path)
		return
	}

	file := FileInfo{
		Path:     path,
		FileName: filepath.Base(path),
		Size:     info.Size(),
		FileType: fileType,
	}

	slog.Info("processing new file", "file", file.FileName, "type", fileType.String())

	if err := w.handler(file); err != nil {
		slog.Error("failed to process file", "file", file.FileName, "error", err)
	}
}
