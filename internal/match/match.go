// Package match filters a folder set against a typed query. It is pure:
// no I/O, deterministic, and it preserves the input order.
package match

import (
	"strings"

	"dirhop/internal/scanner"
)

// Result is one matching folder with its display strings.
type Result struct {
	Folder scanner.Folder
	Label  string // relative path, or the leaf name for a root itself
	Detail string // absolute path
}

// Filter returns the folders matching query, in input order. Matching is
// case-insensitive. A blank query matches everything.
//
// A folder matches when its leaf name or relative path contains the query
// as a substring, or — for queries with more than one path segment — when
// the relative path's segments contain a substring match for each query
// segment in order (a single forward scan, no backtracking).
func Filter(folders []scanner.Folder, query string) []Result {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		out := make([]Result, len(folders))
		for i, f := range folders {
			out[i] = toResult(f)
		}
		return out
	}

	querySegs := splitSegments(query)

	var out []Result
	for _, f := range folders {
		name := strings.ToLower(f.Name)
		rel := strings.ToLower(f.RelPath)

		switch {
		case strings.Contains(name, query):
		case strings.Contains(rel, query):
		case len(querySegs) > 1 && segmentsMatch(splitSegments(rel), querySegs):
		default:
			continue
		}
		out = append(out, toResult(f))
	}
	return out
}

func toResult(f scanner.Folder) Result {
	label := f.RelPath
	if label == "" {
		label = f.Name
	}
	return Result{Folder: f, Label: label, Detail: f.Path}
}

// splitSegments breaks a path-like string into its non-empty components.
func splitSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// segmentsMatch reports whether pathSegs contains, in order, a substring
// match for every query segment. The cursor only moves forward: each path
// segment is consulted once.
func segmentsMatch(pathSegs, querySegs []string) bool {
	cursor := 0
	for _, seg := range pathSegs {
		if strings.Contains(seg, querySegs[cursor]) {
			cursor++
			if cursor == len(querySegs) {
				return true
			}
		}
	}
	return false
}
