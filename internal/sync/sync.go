package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dirsnap/dirsnap/internal/config"
	"github.com/dirsnap/dirsnap/internal/diff"
	"github.com/dirsnap/dirsnap/internal/index"
	"github.com/dirsnap/dirsnap/internal/statestore"
	"github.com/dirsnap/dirsnap/internal/walker"
)

// Engine orchestrates one run: index the tree, diff against the previous
// snapshot, report, optionally mirror, persist the new snapshot.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	dryRun bool
}

// NewEngine creates a new engine. Change report lines go to out; all
// diagnostics go through the logger.
func NewEngine(cfg *config.Config, logger *slog.Logger, out io.Writer, dryRun bool) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		out:    out,
		dryRun: dryRun,
	}
}

// Run executes the complete index-diff-mirror cycle.
//
// Two concurrent runs against the same state file or target are not
// coordinated and can corrupt either; callers that need that must lock
// externally.
func (e *Engine) Run(ctx context.Context) error {
	root, err := ResolveRoot(e.cfg.Root)
	if err != nil {
		return err
	}

	var target string
	if e.cfg.Target != "" {
		target, err = ResolveTarget(e.cfg.Target)
		if err != nil {
			return err
		}
		// Overlapping roots would let a run rewrite its own source; reject
		// before anything is read or written.
		if err := CheckOverlap(root, target); err != nil {
			return err
		}
	}

	e.logger.Info("starting run",
		"root", root,
		"state_file", e.cfg.StateFile,
		"algorithm", e.cfg.Algorithm,
		"dry_run", e.dryRun)

	prev := statestore.Load(e.cfg.StateFile)
	for _, w := range prev.Warnings {
		e.logger.Warn("state file problem", "warning", w)
	}

	walked, err := walker.Collect(root, e.cfg.Excludes, e.cfg.FollowSymlinks)
	if err != nil {
		return err
	}
	for _, w := range walked.Warnings {
		e.logger.Warn("traversal problem", "warning", w)
	}

	e.logger.Info("indexing files", "count", len(walked.Paths))
	next, err := index.Build(ctx, root, walked.Paths, e.cfg.Algo())
	if err != nil {
		return err
	}

	changes := diff.Compute(prev.Index, next)
	added, updated, deleted := diff.Count(changes)
	e.logger.Info("diff computed", "added", added, "updated", updated, "deleted", deleted)

	if err := e.report(changes); err != nil {
		return fmt.Errorf("failed to write change report: %w", err)
	}

	if e.dryRun {
		e.logger.Info("dry-run complete, no changes applied")
		return nil
	}

	if target != "" {
		if err := e.mirror(root, target, changes); err != nil {
			return err
		}
	}

	if !e.cfg.NoWrite {
		if err := statestore.Save(e.cfg.StateFile, next); err != nil {
			return err
		}
	}

	e.logger.Info("run completed")
	return nil
}

// report writes one line per change, in diff order.
func (e *Engine) report(changes []diff.Change) error {
	for _, c := range changes {
		if _, err := fmt.Fprintln(e.out, c); err != nil {
			return err
		}
	}
	return nil
}

// mirror applies the classified changes to the target root. Changes applied
// before a failure stay applied: there is no rollback across the batch.
func (e *Engine) mirror(root, target string, changes []diff.Change) error {
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", target, err)
	}

	for _, ch := range changes {
		switch ch.Kind {
		case diff.Added, diff.Updated:
			if err := e.copyChange(root, target, ch.Path); err != nil {
				return err
			}
		case diff.Deleted:
			if err := e.deleteChange(target, ch.Path); err != nil {
				return err
			}
		}
	}
	return nil
}
