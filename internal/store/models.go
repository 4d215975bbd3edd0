package store

import (
	"time"

	"dirhop/internal/scanner"
)

// SchemaVersion tags the on-disk layout of a persisted generation. A
// loaded generation carrying a different version is discarded by the
// cache layer as if no cache existed.
const SchemaVersion = 1

// Generation is one complete snapshot of scanned folders plus the
// metadata that decides whether it is still valid.
type Generation struct {
	Folders []scanner.Folder
	BuiltAt time.Time
	Roots   []string
	Schema  int
}
