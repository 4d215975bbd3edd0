package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirhop/internal/scanner"
)

func testOptions() scanner.Options {
	return scanner.Options{
		MaxFolders:       10000,
		MaxDepth:         5,
		IgnoredNames:     map[string]bool{"node_modules": true},
		IgnoreDotFolders: true,
	}
}

func newTestTracker(t *testing.T, dirs ...string) *Tracker {
	t.Helper()
	tr, err := New(testOptions(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	tr.Arm(dirs)
	return tr
}

// waitEvent blocks for the next event or fails the test.
func waitEvent(t *testing.T, tr *Tracker) Event {
	t.Helper()
	select {
	case ev := <-tr.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// expectQuiet asserts no event arrives within the window.
func expectQuiet(t *testing.T, tr *Tracker) {
	t.Helper()
	select {
	case ev := <-tr.Events():
		t.Fatalf("unexpected event: %s %s", ev.Op, ev.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestTrackerEmitsCreate(t *testing.T) {
	root := t.TempDir()
	tr := newTestTracker(t, root)

	created := filepath.Join(root, "newdir")
	require.NoError(t, os.Mkdir(created, 0o755))

	ev := waitEvent(t, tr)
	assert.Equal(t, OpCreate, ev.Op)
	assert.Equal(t, created, ev.Path)
	assert.False(t, ev.Time.IsZero())
}

func TestTrackerWatchesCreatedDirectories(t *testing.T) {
	root := t.TempDir()
	tr := newTestTracker(t, root)

	parent := filepath.Join(root, "parent")
	require.NoError(t, os.Mkdir(parent, 0o755))
	ev := waitEvent(t, tr)
	require.Equal(t, parent, ev.Path)

	// The new directory was auto-watched, so a grandchild is seen too.
	child := filepath.Join(parent, "child")
	require.NoError(t, os.Mkdir(child, 0o755))
	ev = waitEvent(t, tr)
	assert.Equal(t, OpCreate, ev.Op)
	assert.Equal(t, child, ev.Path)
}

func TestTrackerEmitsRemove(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "doomed")
	require.NoError(t, os.Mkdir(dir, 0o755))

	tr := newTestTracker(t, root, dir)

	require.NoError(t, os.Remove(dir))
	ev := waitEvent(t, tr)
	assert.Equal(t, OpRemove, ev.Op)
	assert.Equal(t, dir, ev.Path)
}

func TestTrackerFiltersExcludedNames(t *testing.T) {
	root := t.TempDir()
	tr := newTestTracker(t, root)

	require.NoError(t, os.Mkdir(filepath.Join(root, ".hidden"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0o755))
	expectQuiet(t, tr)
}

func TestTrackerIgnoresFileCreation(t *testing.T) {
	root := t.TempDir()
	tr := newTestTracker(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("x"), 0o644))
	expectQuiet(t, tr)
}

func TestTrackerArmToleratesMissingDirs(t *testing.T) {
	root := t.TempDir()
	tr := newTestTracker(t, root, filepath.Join(root, "vanished"))

	// Still functional for the directories that do exist.
	created := filepath.Join(root, "ok")
	require.NoError(t, os.Mkdir(created, 0o755))
	ev := waitEvent(t, tr)
	assert.Equal(t, created, ev.Path)
}

func TestTrackerCloseIsIdempotent(t *testing.T) {
	tr, err := New(testOptions(), nil)
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	// The event channel is closed so consumers can range over it.
	_, ok := <-tr.Events()
	assert.False(t, ok)
}
