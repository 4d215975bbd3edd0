// Package tracker keeps the folder cache consistent between full rescans
// by watching for directory creation and deletion under the scanned roots.
package tracker

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"dirhop/internal/scanner"
)

// Op is the kind of change observed.
type Op int

const (
	// OpCreate indicates a directory was created.
	OpCreate Op = iota
	// OpRemove indicates a directory was removed or renamed away.
	OpRemove
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one observed directory change. Events are delivered on a
// single channel; the cache consumes them on one goroutine so incremental
// mutations never interleave with a rebuild.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Tracker watches a set of directories via fsnotify. fsnotify watches are
// not recursive, so the tracker is armed with every directory of the
// current cache generation and adds watches for directories created while
// it is running.
type Tracker struct {
	watcher *fsnotify.Watcher
	events  chan Event
	opts    scanner.Options
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// eventBuffer bounds the outgoing channel; events beyond it are dropped
// rather than blocking the fsnotify loop.
const eventBuffer = 256

// New creates a tracker filtering events through opts. A nil logger
// disables logging.
func New(opts scanner.Options, log *zap.Logger) (*Tracker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		watcher: fsw,
		events:  make(chan Event, eventBuffer),
		opts:    opts,
		log:     log,
		done:    make(chan struct{}),
	}
	t.wg.Add(1)
	go t.loop()
	return t, nil
}

// Arm registers watches for every given directory. Directories that have
// vanished or cannot be watched are skipped.
func (t *Tracker) Arm(dirs []string) {
	for _, dir := range dirs {
		if err := t.watcher.Add(dir); err != nil {
			t.log.Debug("watch failed", zap.String("dir", dir), zap.Error(err))
		}
	}
}

// Events returns the change channel. It is closed when the tracker is.
func (t *Tracker) Events() <-chan Event {
	return t.events
}

// Close stops watching and closes the event channel.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	t.mu.Unlock()

	err := t.watcher.Close()
	t.wg.Wait()
	close(t.events)
	return err
}

func (t *Tracker) loop() {
	defer t.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			t.handle(ev)
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (t *Tracker) handle(ev fsnotify.Event) {
	if scanner.Excluded(filepath.Base(ev.Name), t.opts) {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.IsDir() {
			return // files and already-gone entries are not our business
		}
		// Watch the new directory so its own children are seen too.
		if err := t.watcher.Add(ev.Name); err != nil {
			t.log.Debug("watch failed", zap.String("dir", ev.Name), zap.Error(err))
		}
		t.emit(Event{Path: ev.Name, Op: OpCreate, Time: time.Now()})

	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// The entry is gone; whether it was a directory is decided by
		// the cache, which only holds directory records anyway.
		t.emit(Event{Path: ev.Name, Op: OpRemove, Time: time.Now()})
	}
}

func (t *Tracker) emit(ev Event) {
	select {
	case t.events <- ev:
	default:
		t.log.Warn("event buffer full, dropping", zap.String("path", ev.Path))
	}
}
