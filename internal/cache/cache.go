// Package cache owns the live folder generation: it decides when a full
// rescan is needed, persists the result, and applies the change tracker's
// incremental patches between rescans.
package cache

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"dirhop/internal/scanner"
	"dirhop/internal/store"
	"dirhop/internal/tracker"
)

// ExpiryWindow is how old a generation may get before it is rebuilt.
const ExpiryWindow = 24 * time.Hour

// Cache serves folder lookups, transparently rebuilding when stale.
// The generation it holds is mutated only under its mutex: wholesale by
// rebuild, incrementally by the tracker consumer goroutine.
type Cache struct {
	store    store.Store
	opts     scanner.Options
	log      *zap.Logger
	progress scanner.ProgressFunc
	lock     *flock.Flock

	mu       sync.Mutex
	gen      *store.Generation
	scanning bool

	tracker   *tracker.Tracker
	consumeWg sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithProgress forwards scan progress to fn.
func WithProgress(fn scanner.ProgressFunc) Option {
	return func(c *Cache) { c.progress = fn }
}

// WithLockFile guards rebuilds with a file lock so two processes never
// scan concurrently. Like the in-process guard, losing the race skips the
// rebuild rather than waiting for it.
func WithLockFile(path string) Option {
	return func(c *Cache) { c.lock = flock.New(path) }
}

// New creates a cache over st. The caller keeps ownership of st and
// closes it after the cache is closed.
func New(st store.Store, opts scanner.Options, options ...Option) *Cache {
	c := &Cache{
		store: st,
		opts:  opts,
		log:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SetProgress replaces the progress callback used by subsequent scans.
func (c *Cache) SetProgress(fn scanner.ProgressFunc) {
	c.mu.Lock()
	c.progress = fn
	c.mu.Unlock()
}

// Load pulls the persisted generation into memory. A generation with a
// mismatched schema version is discarded, as if nothing had been saved.
func (c *Cache) Load() error {
	gen, err := c.store.LoadGeneration()
	if err != nil {
		return err
	}
	if gen != nil && gen.Schema != store.SchemaVersion {
		c.log.Info("discarding cache with stale schema",
			zap.Int("found", gen.Schema), zap.Int("want", store.SchemaVersion))
		gen = nil
	}
	c.mu.Lock()
	c.gen = gen
	c.mu.Unlock()
	return nil
}

// Folders returns the folder set for roots, rescanning first when the
// cache is missing, expired, or was built from a different root set.
// While a rescan is already in flight, callers are served whatever
// generation exists — possibly none — instead of being queued.
func (c *Cache) Folders(ctx context.Context, roots []string) ([]scanner.Folder, error) {
	c.mu.Lock()
	if c.scanning {
		folders := c.current()
		c.mu.Unlock()
		return folders, nil
	}
	if c.gen != nil && time.Since(c.gen.BuiltAt) <= ExpiryWindow && sameRoots(c.gen.Roots, roots) {
		folders := c.current()
		c.mu.Unlock()
		return folders, nil
	}
	c.scanning = true
	c.mu.Unlock()

	return c.rebuild(ctx, roots)
}

// Rescan forces a full rebuild regardless of freshness. It still honors
// the at-most-one-rebuild guard.
func (c *Cache) Rescan(ctx context.Context, roots []string) ([]scanner.Folder, error) {
	c.mu.Lock()
	if c.scanning {
		folders := c.current()
		c.mu.Unlock()
		return folders, nil
	}
	c.scanning = true
	c.mu.Unlock()

	return c.rebuild(ctx, roots)
}

// rebuild runs with the scanning flag held; it clears the flag on every
// return path.
func (c *Cache) rebuild(ctx context.Context, roots []string) ([]scanner.Folder, error) {
	defer func() {
		c.mu.Lock()
		c.scanning = false
		c.mu.Unlock()
	}()

	if c.lock != nil {
		ok, err := c.lock.TryLock()
		if err != nil || !ok {
			// Another process is scanning; serve what we have.
			c.log.Debug("rebuild lock held elsewhere, skipping", zap.Error(err))
			c.mu.Lock()
			folders := c.current()
			c.mu.Unlock()
			return folders, nil
		}
		defer c.lock.Unlock()
	}

	// Old watches must be gone before the new scan so a stale
	// subscription can never patch the generation we are replacing.
	c.disposeTracker()

	c.mu.Lock()
	progress := c.progress
	c.mu.Unlock()

	start := time.Now()
	folders, err := scanner.Scan(ctx, roots, c.opts, progress)
	if err != nil {
		return nil, err
	}
	c.log.Info("scan complete",
		zap.Int("folders", len(folders)),
		zap.Duration("took", time.Since(start)))

	gen := &store.Generation{
		Folders: folders,
		BuiltAt: time.Now(),
		Roots:   append([]string(nil), roots...),
		Schema:  store.SchemaVersion,
	}

	if err := c.store.SaveGeneration(gen); err != nil {
		// The in-memory generation is still good; persistence catches up
		// on the next rebuild.
		c.log.Warn("persist failed", zap.Error(err))
	}

	// Swap before arming: an event that fires the instant the watches
	// land must patch the new generation, not the one being replaced.
	c.mu.Lock()
	c.gen = gen
	c.mu.Unlock()

	c.armTracker(gen)

	return append([]scanner.Folder(nil), folders...), nil
}

// armTracker starts a fresh tracker over every directory of gen and a
// consumer goroutine that applies its events.
func (c *Cache) armTracker(gen *store.Generation) {
	t, err := tracker.New(c.opts, c.log)
	if err != nil {
		c.log.Warn("tracker unavailable, cache will age out instead", zap.Error(err))
		return
	}
	dirs := make([]string, 0, len(gen.Folders))
	for _, f := range gen.Folders {
		dirs = append(dirs, f.Path)
	}
	t.Arm(dirs)

	c.tracker = t
	c.consumeWg.Add(1)
	go func() {
		defer c.consumeWg.Done()
		for ev := range t.Events() {
			c.Apply(ev)
		}
	}()
}

// EnsureTracking arms a tracker over the current generation when none is
// running yet. Rebuilds arm their own tracker; this covers a session
// whose Folders call was served straight from a fresh cache, which would
// otherwise see no filesystem events until expiry.
func (c *Cache) EnsureTracking() {
	if c.tracker != nil {
		return
	}
	c.mu.Lock()
	gen := c.gen
	scanning := c.scanning
	c.mu.Unlock()
	if gen == nil || scanning {
		return
	}
	c.armTracker(gen)
}

// disposeTracker stops the current tracker and waits for its consumer,
// so no incremental mutation can interleave with what follows.
func (c *Cache) disposeTracker() {
	if c.tracker == nil {
		return
	}
	c.tracker.Close()
	c.consumeWg.Wait()
	c.tracker = nil
}

// Apply patches the live generation for one tracker event. It is the
// only mutation path besides a full rebuild, and it serializes on the
// same mutex, so a rebuild swap can never interleave with a patch.
func (c *Cache) Apply(ev tracker.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == nil {
		return
	}

	switch ev.Op {
	case tracker.OpCreate:
		if scanner.Excluded(filepath.Base(ev.Path), c.opts) {
			return
		}
		root := owningRoot(c.gen.Roots, ev.Path)
		if root == "" {
			return
		}
		for _, f := range c.gen.Folders {
			if f.Path == ev.Path {
				return // already known
			}
		}
		rel, err := filepath.Rel(root, ev.Path)
		if err != nil {
			return
		}
		f := scanner.Folder{
			Path:    ev.Path,
			RelPath: filepath.ToSlash(rel),
			Name:    filepath.Base(ev.Path),
			Root:    root,
			SeenAt:  ev.Time,
		}
		c.gen.Folders = append(c.gen.Folders, f)
		if err := c.store.InsertFolder(f); err != nil {
			c.log.Warn("persist create failed", zap.String("path", ev.Path), zap.Error(err))
		}
		c.log.Debug("folder added", zap.String("path", ev.Path))

	case tracker.OpRemove:
		// Only the exact path is dropped. Records under a removed
		// ancestor linger until the next rebuild or expiry.
		kept := c.gen.Folders[:0]
		removed := false
		for _, f := range c.gen.Folders {
			if f.Path == ev.Path {
				removed = true
				continue
			}
			kept = append(kept, f)
		}
		if !removed {
			return
		}
		c.gen.Folders = kept
		if err := c.store.DeleteFolder(ev.Path); err != nil {
			c.log.Warn("persist delete failed", zap.String("path", ev.Path), zap.Error(err))
		}
		c.log.Debug("folder removed", zap.String("path", ev.Path))
	}
}

// Close stops the tracker. The store stays open for the caller.
func (c *Cache) Close() error {
	c.disposeTracker()
	return nil
}

// current returns a copy of the live folder slice; callers must not see
// later incremental mutations. Called with c.mu held.
func (c *Cache) current() []scanner.Folder {
	if c.gen == nil {
		return nil
	}
	return append([]scanner.Folder(nil), c.gen.Folders...)
}

// sameRoots compares root sets by membership, ignoring order.
func sameRoots(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, r := range a {
		set[filepath.Clean(r)] = true
	}
	for _, r := range b {
		if !set[filepath.Clean(r)] {
			return false
		}
	}
	return true
}

// owningRoot picks the root containing path, preferring the longest
// match when roots nest.
func owningRoot(roots []string, path string) string {
	best := ""
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best
}
