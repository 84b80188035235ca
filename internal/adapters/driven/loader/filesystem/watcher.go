package filesystem

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/quill-cli/internal/logger"
)

// debounceWindow coalesces rapid write bursts into one change event.
// Editors often emit several writes while saving a single file.
const debounceWindow = 500 * time.Millisecond

// Watcher monitors a directory for new or modified text documents and
// invokes a callback with the changed path.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
	stopChan chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	debounce map[string]*time.Timer
}

// NewWatcher watches dir for changes to supported document files.
func NewWatcher(dir string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		watcher:  fsw,
		onChange: onChange,
		stopChan: make(chan struct{}),
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins processing filesystem events in the background.
func (w *Watcher) Start() {
	go w.watchLoop()
	logger.Info("started document watcher")
}

// Stop ends the watch and releases resources. Safe to call twice.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.watcher.Close()
		logger.Info("stopped document watcher")
	})
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsSupported(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.scheduleChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// scheduleChange resets the file's debounce timer so only the last
// event in a burst reaches the callback.
func (w *Watcher) scheduleChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.debounce[path]; exists {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()

		logger.Debug("document changed: %s", path)
		if w.onChange != nil {
			w.onChange(path)
		}
	})
}
