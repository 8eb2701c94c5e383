// Package statestore persists an index as a line-oriented snapshot file.
//
// The format is one record per line, sorted by relative path:
//
//	<rel_path>:<size>:<tstamp>:<hash_hex>
//
// Lines starting with '#' and blank lines are ignored. The snapshot is the
// only durable state of a run and is frequently edited or truncated by
// hand, so loading is maximally tolerant: malformed records degrade to
// warnings, never to a failed run.
//
// Known limitation: records are split on ':' with a maximum of four fields,
// so a relative path containing a colon will mis-parse on reload.
package statestore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dirsnap/dirsnap/internal/index"
)

const recordFields = 4

// LoadResult carries the parsed index together with the diagnostics
// accumulated while parsing, so callers decide how to surface them.
type LoadResult struct {
	Index    index.Index
	Warnings []string
}

func (r *LoadResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Load reads a snapshot file into an index. A missing or unreadable file
// yields an empty index; individual bad lines are skipped with a warning.
func Load(path string) LoadResult {
	res := LoadResult{Index: index.Index{}}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			res.warnf("failed to open previous state %s: %v", path, err)
		}
		return res
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", recordFields)
		if len(parts) != recordFields {
			res.warnf("invalid format at line %d: %s", lineno, line)
			continue
		}

		rel := parts[0]
		if _, exists := res.Index[rel]; exists {
			res.warnf("duplicate path at line %d: %s (last occurrence wins)", lineno, rel)
		}

		size, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			res.warnf("invalid size at line %d: %s", lineno, parts[1])
			size = 0
		}
		tstamp, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			res.warnf("invalid timestamp at line %d: %s", lineno, parts[2])
			tstamp = 0
		}

		res.Index[rel] = index.Entry{
			RelPath: rel,
			Size:    size,
			TStamp:  tstamp,
			HashHex: parts[3],
		}
	}
	if err := scanner.Err(); err != nil {
		res.warnf("failed while reading %s: %v", path, err)
	}

	return res
}

// Save writes the index as a whole-file overwrite, entries sorted by
// relative path. The write goes through a temp file in the same directory
// and a rename, so readers never observe a partially written snapshot.
func Save(path string, ix index.Index) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state file directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".dirsnap-state-*")
	if err != nil {
		return fmt.Errorf("failed to create state file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	w := bufio.NewWriter(tmp)
	for _, rel := range ix.Paths() {
		e := ix[rel]
		if _, err := fmt.Fprintf(w, "%s:%d:%d:%s\n", e.RelPath, e.Size, e.TStamp, e.HashHex); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write state file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	// CreateTemp opens 0600; the snapshot is meant to be readable like any
	// hand-edited text file.
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", path, err)
	}
	return nil
}
