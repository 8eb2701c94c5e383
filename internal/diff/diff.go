package diff

import (
	"fmt"
	"sort"

	"github.com/dirsnap/dirsnap/internal/index"
)

// Kind classifies a change. The declaration order doubles as the sort rank:
// additions first, then updates, then deletions.
type Kind int

const (
	Added Kind = iota
	Updated
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "A"
	case Updated:
		return "U"
	case Deleted:
		return "D"
	default:
		return "?"
	}
}

// Change is one classified difference between two indices. Changes are
// produced by Compute, consumed within the same run, and never persisted.
type Change struct {
	Kind Kind
	Path string
}

// String renders the report line for the change, e.g. "A: docs/readme.md".
func (c Change) String() string {
	return fmt.Sprintf("%s: %s", c.Kind, c.Path)
}

// Compute classifies every path difference between an old and a new index.
// Only content matters: a shared path counts as updated when its hash
// differs, while size or timestamp churn alone produces no change. The
// result is sorted by (kind rank, path) so the same pair of indices always
// yields the same sequence.
func Compute(old, updated index.Index) []Change {
	var changes []Change

	for path, e := range updated {
		prev, ok := old[path]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: Added, Path: path})
		case prev.HashHex != e.HashHex:
			changes = append(changes, Change{Kind: Updated, Path: path})
		}
	}

	for path := range old {
		if _, ok := updated[path]; !ok {
			changes = append(changes, Change{Kind: Deleted, Path: path})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Kind != changes[j].Kind {
			return changes[i].Kind < changes[j].Kind
		}
		return changes[i].Path < changes[j].Path
	})

	return changes
}

// Count returns the number of changes of each kind, in rank order.
func Count(changes []Change) (added, updated, deleted int) {
	for _, c := range changes {
		switch c.Kind {
		case Added:
			added++
		case Updated:
			updated++
		case Deleted:
			deleted++
		}
	}
	return added, updated, deleted
}
