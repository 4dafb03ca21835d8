// Package watch monitors the triage folder for images that arrive
// mid-session, so they can join the pending pool without a rescan.
package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"culld/internal/log"
	"culld/internal/triage"

	"github.com/fsnotify/fsnotify"
)

// Arrival is one image file detected in the watched folder.
type Arrival struct {
	Path      string
	Timestamp time.Time
}

// Watcher monitors a folder for new image files using fsnotify.
type Watcher struct {
	arrivals  chan Arrival
	stopChan  chan struct{}
	fsWatcher *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
	folder  string
}

// New creates a folder watcher.
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		arrivals:  make(chan Arrival, 32),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// SetFolder points the watcher at a folder, replacing any previous one.
func (w *Watcher) SetFolder(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.folder != "" {
		if err := w.fsWatcher.Remove(w.folder); err != nil {
			log.WithFields(log.F("directory", w.folder), log.F("error", err)).Warn("Could not unwatch previous folder")
		}
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.folder = dir
	log.WithFields(log.F("directory", dir)).Info("Watching folder for new images")
	return nil
}

// Arrivals returns the channel that delivers new image files.
func (w *Watcher) Arrivals() <-chan Arrival {
	return w.arrivals
}

// Start begins delivering arrival events.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mutex.Unlock()

	go w.loop()
	return nil
}

// loop owns the arrivals channel: it is the only sender, so it alone
// closes the channel on the way out.
func (w *Watcher) loop() {
	defer close(w.arrivals)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			// Renames into the folder surface as Create on most
			// platforms; Write covers slow copies finishing.
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !triage.IsImagePath(event.Name) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				// The file may be gone again already
				if !os.IsNotExist(err) {
					log.WithFields(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
				}
				continue
			}
			if info.IsDir() {
				continue
			}

			select {
			case w.arrivals <- Arrival{Path: event.Name, Timestamp: time.Now()}:
			default:
				log.WithFields(log.F("file", event.Name)).Warn("Arrival channel full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.WithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// Stop halts the watcher. The loop goroutine closes the arrivals
// channel once it has drained, so a consumer ranging over Arrivals
// terminates cleanly.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.WithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	w.running = false
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Folder returns the folder currently being watched.
func (w *Watcher) Folder() string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.folder
}
