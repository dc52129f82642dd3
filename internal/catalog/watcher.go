package catalog

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lowaak/running-coach/internal/go_func_utils"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a catalog file when it changes on disk and publishes each
// version that parses and validates. Broken intermediate saves are logged and
// skipped.
type Watcher struct {
	logger    *log.Logger
	path      string
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher
	updates   chan *Catalog
	done      chan struct{}
	stopped   chan struct{}
}

func NewWatcher(logger *log.Logger, path string, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:    logger,
		path:      filepath.Clean(path),
		debounce:  debounce,
		fsWatcher: fsw,
		updates:   make(chan *Catalog, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}, nil
}

// Start watches the directory holding the catalog file, so editors that
// replace the file by rename are seen too.
func (w *Watcher) Start() (<-chan *Catalog, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go_func_utils.SafeGo(w.logger, "catalog watcher", w.loop)
	w.logger.Printf("CatalogWatcher: watching %s", w.path)
	return w.updates, nil
}

// Stop ends the watch loop and closes the updates channel
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	<-w.stopped
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	defer close(w.updates)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("CatalogWatcher: watch error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		w.logger.Printf("CatalogWatcher: ignoring update: %v", err)
		return
	}

	// Keep only the newest catalog if the consumer is behind
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- c:
		w.logger.Printf("CatalogWatcher: reloaded %s (%d families)", w.path, len(c.Families))
	default:
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
