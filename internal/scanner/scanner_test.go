package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		MaxFolders:       10000,
		MaxDepth:         5,
		IgnoredNames:     map[string]bool{"node_modules": true},
		IgnoreDotFolders: true,
	}
}

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o755))
	}
}

func paths(folders []Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.Path
	}
	return out
}

func TestScanDepthZeroReturnsOnlyRoots(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/b", "c")

	opts := testOptions()
	opts.MaxDepth = 0

	folders, err := Scan(context.Background(), []string{root}, opts, nil)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, resolve(root), folders[0].Path)
	assert.Equal(t, "", folders[0].RelPath)
}

func TestScanRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/b/c/d/e")

	opts := testOptions()
	opts.MaxDepth = 2

	folders, err := Scan(context.Background(), []string{root}, opts, nil)
	require.NoError(t, err)

	for _, f := range folders {
		if f.RelPath == "" {
			continue // the root itself
		}
		segs := 1
		for _, r := range f.RelPath {
			if r == '/' {
				segs++
			}
		}
		assert.LessOrEqual(t, segs, 2, "folder %s exceeds depth limit", f.RelPath)
	}
	assert.Contains(t, relPaths(folders), "a/b")
	assert.NotContains(t, relPaths(folders), "a/b/c")
}

func relPaths(folders []Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.RelPath
	}
	return out
}

func TestScanSkipsIgnoredAndDotFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "node_modules/pkg", "src/utils", ".git/objects")

	folders, err := Scan(context.Background(), []string{root}, testOptions(), nil)
	require.NoError(t, err)

	rels := relPaths(folders)
	assert.Contains(t, rels, "src")
	assert.Contains(t, rels, "src/utils")
	assert.NotContains(t, rels, "node_modules")
	assert.NotContains(t, rels, ".git")
	// Children of a skipped directory are never reached.
	assert.NotContains(t, rels, "node_modules/pkg")
	assert.NotContains(t, rels, ".git/objects")
}

func TestScanKeepsDotFoldersWhenAllowed(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".config")

	opts := testOptions()
	opts.IgnoreDotFolders = false

	folders, err := Scan(context.Background(), []string{root}, opts, nil)
	require.NoError(t, err)
	assert.Contains(t, relPaths(folders), ".config")
}

func TestScanStopsAtMaxFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a", "b", "c", "d", "e", "f", "g", "h")

	opts := testOptions()
	opts.MaxFolders = 4

	folders, err := Scan(context.Background(), []string{root}, opts, nil)
	require.NoError(t, err)
	assert.Len(t, folders, 4)
}

func TestScanDeduplicatesRoots(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "sub")

	folders, err := Scan(context.Background(), []string{root, root}, testOptions(), nil)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, p := range paths(folders) {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "path %s emitted more than once", p)
	}
}

func TestScanDeduplicatesSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	mkdirs(t, base, "real/sub")

	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(real, link))

	folders, err := Scan(context.Background(), []string{real, link}, testOptions(), nil)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, p := range paths(folders) {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "physical path %s emitted more than once", p)
	}
	// One root record, one sub record.
	assert.Len(t, folders, 2)
}

func TestScanMissingRootSkipped(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "sub")

	folders, err := Scan(context.Background(), []string{root, filepath.Join(root, "nope")}, testOptions(), nil)
	require.NoError(t, err)
	assert.Len(t, folders, 2)
}

func TestScanSkipsFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	// A regular file is not a folder record, even as a root.
	got, err := Scan(context.Background(), []string{file, dir}, testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{resolve(dir)}, paths(got))
}

func TestScanCancellationReturnsPartial(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/b", "c/d")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before any dequeue

	folders, err := Scan(ctx, []string{root}, testOptions(), nil)
	require.NoError(t, err, "cancellation is not an error")
	// Only the seeded root was collected.
	require.Len(t, folders, 1)
	assert.Equal(t, resolve(root), folders[0].Path)
}

func TestScanProgressReported(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 300; i++ {
		names = append(names, filepath.Join("bulk", string(rune('a'+i%26))+string(rune('a'+(i/26)%26))+string(rune('a'+(i/676)%26))))
	}
	mkdirs(t, root, names...)

	var calls int
	_, err := Scan(context.Background(), []string{root}, testOptions(), func(count, depth int) {
		calls++
		assert.GreaterOrEqual(t, count, 0)
	})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
}

func TestExcluded(t *testing.T) {
	opts := testOptions()

	assert.True(t, Excluded("node_modules", opts))
	assert.True(t, Excluded(".git", opts))
	assert.False(t, Excluded("src", opts))

	opts.IgnoreDotFolders = false
	assert.False(t, Excluded(".git", opts))
}
