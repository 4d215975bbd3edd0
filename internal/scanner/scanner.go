package scanner

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Folder is a single discovered directory.
type Folder struct {
	Path    string    // absolute path, unique within one scan
	RelPath string    // path relative to the owning root, slash-separated
	Name    string    // leaf name
	Root    string    // the root this folder was found under
	SeenAt  time.Time // when the scan (or tracker) last observed it
}

// Options bounds a scan. Values are fixed for the duration of one scan.
type Options struct {
	// MaxFolders caps the number of records a scan may collect.
	MaxFolders int
	// MaxDepth is the number of edges below a root that may be expanded.
	// 0 means roots only.
	MaxDepth int
	// IgnoredNames are leaf names skipped by exact match.
	IgnoredNames map[string]bool
	// IgnoreDotFolders skips any directory whose name starts with a dot.
	IgnoreDotFolders bool
}

// DefaultIgnoredNames are the build and dependency directories nobody
// wants to jump into.
var DefaultIgnoredNames = []string{
	"node_modules",
	"vendor",
	"__pycache__",
	"dist",
	"build",
	"out",
	"target",
	"bin",
	"obj",
}

// ProgressFunc receives periodic scan progress. count is the number of
// records collected so far, depth the BFS depth currently being expanded.
type ProgressFunc func(count, depth int)

// progressEvery controls how often ProgressFunc fires (in records).
const progressEvery = 250

// item is one queued directory awaiting expansion.
type item struct {
	path  string
	root  string
	depth int
}

// Scan walks all roots breadth-first and returns the discovered folders,
// roots included at depth 0. Unreadable directories are skipped, never
// reported. Cancelling ctx stops dequeuing and returns whatever has been
// collected so far, without an error.
func Scan(ctx context.Context, roots []string, opts Options, onProgress ProgressFunc) ([]Folder, error) {
	if opts.MaxFolders <= 0 {
		return nil, nil
	}

	now := time.Now()
	seen := make(map[string]bool)
	var queue []item
	var out []Folder

	// Seed with the roots themselves. A root reachable twice (duplicate
	// entry, symlink) collapses onto one physical path.
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		phys := resolve(abs)
		if seen[phys] {
			continue
		}
		info, err := os.Stat(phys)
		if err != nil || !info.IsDir() {
			continue
		}
		seen[phys] = true
		queue = append(queue, item{path: phys, root: phys, depth: 0})
		out = append(out, Folder{
			Path:    phys,
			RelPath: "",
			Name:    filepath.Base(phys),
			Root:    phys,
			SeenAt:  now,
		})
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			// Cooperative stop: hand back the partial result.
			return out, nil
		default:
		}

		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= opts.MaxDepth || len(out) >= opts.MaxFolders {
			continue
		}

		entries, err := os.ReadDir(cur.path)
		if err != nil {
			continue // unreadable, keep going
		}

		for _, entry := range entries {
			if len(out) >= opts.MaxFolders {
				break
			}
			if !isDir(cur.path, entry) {
				continue
			}
			name := entry.Name()
			if Excluded(name, opts) {
				continue
			}
			phys := resolve(filepath.Join(cur.path, name))
			if seen[phys] {
				continue
			}
			seen[phys] = true

			rel, err := filepath.Rel(cur.root, phys)
			if err != nil {
				rel = name
			}
			out = append(out, Folder{
				Path:    phys,
				RelPath: filepath.ToSlash(rel),
				Name:    name,
				Root:    cur.root,
				SeenAt:  now,
			})
			queue = append(queue, item{path: phys, root: cur.root, depth: cur.depth + 1})

			if onProgress != nil && len(out)%progressEvery == 0 {
				onProgress(len(out), cur.depth+1)
			}
		}
	}

	if onProgress != nil {
		onProgress(len(out), 0)
	}
	return out, nil
}

// Excluded reports whether a leaf name is filtered out by the options.
func Excluded(name string, opts Options) bool {
	if opts.IgnoreDotFolders && len(name) > 0 && name[0] == '.' {
		return true
	}
	return opts.IgnoredNames[name]
}

// isDir reports whether a directory entry is a directory, following
// symlinks so linked trees are still discoverable.
func isDir(parent string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}

// resolve maps a path onto its physical location so the seen-set catches
// symlink cycles. Falls back to the input when resolution fails.
func resolve(path string) string {
	if phys, err := filepath.EvalSymlinks(path); err == nil {
		return phys
	}
	return path
}
