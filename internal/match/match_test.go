package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirhop/internal/scanner"
)

func folder(rel string) scanner.Folder {
	name := rel
	for i := len(rel) - 1; i >= 0; i-- {
		if rel[i] == '/' {
			name = rel[i+1:]
			break
		}
	}
	return scanner.Folder{
		Path:    "/work/" + rel,
		RelPath: rel,
		Name:    name,
		Root:    "/work",
	}
}

func labels(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Label
	}
	return out
}

func TestFilterBlankQueryReturnsAllInOrder(t *testing.T) {
	folders := []scanner.Folder{folder("zeta"), folder("alpha"), folder("mid/dle")}

	results := Filter(folders, "")
	require.Len(t, results, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid/dle"}, labels(results))

	// Whitespace-only queries behave like blank ones.
	results = Filter(folders, "   ")
	assert.Len(t, results, 3)
}

func TestFilterLeafSubstring(t *testing.T) {
	folders := []scanner.Folder{folder("src/handlers"), folder("docs")}

	results := Filter(folders, "hand")
	require.Len(t, results, 1)
	assert.Equal(t, "src/handlers", results[0].Label)
	assert.Equal(t, "/work/src/handlers", results[0].Detail)
}

func TestFilterCaseInsensitive(t *testing.T) {
	folders := []scanner.Folder{folder("src/Handlers")}

	assert.Len(t, Filter(folders, "HAND"), 1)
	assert.Len(t, Filter(folders, "hand"), 1)
	assert.Len(t, Filter(folders, "sRc/hAnD"), 1)
}

func TestFilterRelPathSubstring(t *testing.T) {
	folders := []scanner.Folder{folder("src/api/v2")}

	// "api/v2" spans a separator, so only the path substring rule hits.
	results := Filter(folders, "api/v2")
	assert.Len(t, results, 1)
}

func TestFilterOrderedSegments(t *testing.T) {
	folders := []scanner.Folder{
		folder("backend/api/handlers"),
		folder("backend/apiserver"),
	}

	// Both match: each query segment finds a path segment in order.
	results := Filter(folders, "back/api")
	require.Len(t, results, 2)
	assert.Equal(t, []string{"backend/api/handlers", "backend/apiserver"}, labels(results))

	// Wrong order: the segment scan fails and the literal substring
	// appears nowhere.
	assert.Empty(t, Filter(folders, "api/back"))
}

func TestFilterSegmentsNoBacktracking(t *testing.T) {
	// "a/b": the scan consumes "ab" for "a", then "c" fails "b" — but
	// the later segment "b" still satisfies the cursor on a forward pass.
	folders := []scanner.Folder{folder("ab/c/b")}
	assert.Len(t, Filter(folders, "a/b"), 1)

	// Here the only "b" segment sits before the only "a" one.
	folders = []scanner.Folder{folder("b/x/a")}
	assert.Empty(t, Filter(folders, "a/b"))
}

func TestFilterSegmentRuleNeedsMultipleSegments(t *testing.T) {
	// A single-segment query never uses the segment rule: "utils" is
	// not a substring of the leaf "til" parent path... but it is of
	// "utilities".
	folders := []scanner.Folder{folder("src/utilities")}
	assert.Len(t, Filter(folders, "utils"), 0)
	assert.Len(t, Filter(folders, "util"), 1)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	folders := []scanner.Folder{
		folder("b/match"),
		folder("a/match"),
		folder("c/match"),
	}
	results := Filter(folders, "match")
	assert.Equal(t, []string{"b/match", "a/match", "c/match"}, labels(results))
}

func TestFilterIsPure(t *testing.T) {
	folders := []scanner.Folder{
		folder("backend/api/handlers"),
		folder("frontend/components"),
	}

	first := Filter(folders, "end")
	second := Filter(folders, "end")
	assert.Equal(t, first, second)
}

func TestFilterRootRecordUsesNameAsLabel(t *testing.T) {
	root := scanner.Folder{Path: "/work", RelPath: "", Name: "work", Root: "/work"}

	results := Filter([]scanner.Folder{root}, "")
	require.Len(t, results, 1)
	assert.Equal(t, "work", results[0].Label)
	assert.Equal(t, "/work", results[0].Detail)
}
