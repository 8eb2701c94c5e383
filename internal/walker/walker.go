package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dirsnap/dirsnap/internal/index"
)

// Result carries the collected file paths together with the non-fatal
// diagnostics accumulated during the walk.
type Result struct {
	Paths    []string
	Warnings []string
}

// Collect walks the tree under root and returns the deduplicated absolute
// paths of every regular file not matched by an exclusion pattern.
// Directories matching a pattern are pruned: their contents are never
// visited. Failures on individual directory entries are recorded as
// warnings and skipped; only an invalid exclusion pattern is fatal.
func Collect(root string, excludes []string, followSymlinks bool) (Result, error) {
	patterns, err := ExpandPatterns(excludes)
	if err != nil {
		return Result{}, err
	}

	c := &collector{
		root:     root,
		patterns: patterns,
		follow:   followSymlinks,
		have:     map[string]bool{},
	}
	if followSymlinks {
		c.visited = map[string]bool{}
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			c.visited[resolved] = true
		}
	}
	c.walkDir(root)

	return Result{Paths: c.paths, Warnings: c.warnings}, nil
}

// ExpandPatterns validates the exclusion patterns and expands each bare
// directory name p into {p, p/**, **/p/**} so that naming a directory
// prunes it and everything beneath it, wherever it sits in the tree.
func ExpandPatterns(excludes []string) ([]string, error) {
	var patterns []string
	for _, pat := range excludes {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pat)
		}
		patterns = append(patterns, pat)

		looksLikeDir := !strings.ContainsAny(pat, "*?[{") &&
			!strings.HasSuffix(pat, "/") && !strings.HasSuffix(pat, `\`)
		if looksLikeDir {
			patterns = append(patterns,
				pat+"/**",
				"**/"+strings.TrimPrefix(pat, "./")+"/**")
		}
	}
	return patterns, nil
}

type collector struct {
	root     string
	patterns []string
	follow   bool
	visited  map[string]bool // resolved directories, symlink loop guard
	have     map[string]bool
	paths    []string
	warnings []string
}

func (c *collector) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *collector) excluded(rel string) bool {
	for _, pat := range c.patterns {
		if doublestar.MatchUnvalidated(pat, rel) {
			return true
		}
	}
	return false
}

func (c *collector) walkDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.warnf("failed to read directory %s: %v", dir, err)
		return
	}

	for _, de := range entries {
		abs := filepath.Join(dir, de.Name())
		rel := index.RelUnix(c.root, abs)
		mode := de.Type()

		if mode&fs.ModeSymlink != 0 {
			if !c.follow {
				continue
			}
			info, err := os.Stat(abs)
			if err != nil {
				c.warnf("failed to resolve symlink %s: %v", abs, err)
				continue
			}
			mode = info.Mode()
		}

		switch {
		case mode.IsDir():
			if c.excluded(rel) {
				continue
			}
			if c.follow && c.revisited(abs) {
				continue
			}
			c.walkDir(abs)

		case mode.IsRegular():
			if c.excluded(rel) {
				continue
			}
			if !c.have[abs] {
				c.have[abs] = true
				c.paths = append(c.paths, abs)
			}
		}
	}
}

// revisited reports whether the directory's resolved path was already
// walked, which would mean a symlink cycle.
func (c *collector) revisited(dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		c.warnf("failed to resolve directory %s: %v", dir, err)
		return true
	}
	if c.visited[resolved] {
		return true
	}
	c.visited[resolved] = true
	return false
}
