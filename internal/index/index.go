package index

import (
	"path/filepath"
	"sort"
)

// Entry records one regular file at index time
type Entry struct {
	RelPath string // slash-separated path relative to the indexed root
	Size    uint64 // byte length at hash time
	TStamp  uint64 // seconds since epoch; birth time where available, else mtime
	HashHex string // lowercase hex content digest
}

// Index is a full snapshot of a directory tree, keyed by relative path.
// Indices are built once per run and never mutated afterwards.
type Index map[string]Entry

// Paths returns the relative paths in lexicographic order. All persistence
// and output iterates in this order so snapshots and reports stay
// deterministic and text-diffable.
func (ix Index) Paths() []string {
	paths := make([]string, 0, len(ix))
	for p := range ix {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// RelUnix converts an absolute path under root to the canonical relative
// form used as index key: slash-separated regardless of host conventions,
// case preserved.
func RelUnix(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		rel = abs
	}
	return filepath.ToSlash(rel)
}
