package index

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dirsnap/dirsnap/internal/hasher"
)

// hashChunkSize bounds per-worker memory regardless of file size
const hashChunkSize = 1 << 20

// Build hashes every path and folds the results into a new Index. Files are
// processed by a worker pool bounded to the available CPUs; each task owns
// its own file handle and returns its Entry by value, so no locking is
// needed. The first failure on any file cancels the group and fails the
// whole build: a partial index is never returned.
func Build(ctx context.Context, root string, paths []string, algo hasher.Algorithm) (Index, error) {
	entries := make([]Entry, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, abs := range paths {
		i, abs := i, abs
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := buildEntry(root, abs, algo)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sort before folding so iteration over a fresh Index never depends on
	// worker completion order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})

	ix := make(Index, len(entries))
	for _, e := range entries {
		ix[e.RelPath] = e
	}
	return ix, nil
}

func buildEntry(root, abs string, algo hasher.Algorithm) (Entry, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read metadata for %s: %w", abs, err)
	}

	digest, err := hashFile(abs, algo)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		RelPath: RelUnix(root, abs),
		Size:    uint64(info.Size()),
		TStamp:  fileTimestamp(abs, info),
		HashHex: digest,
	}, nil
}

// hashFile streams the file through the configured algorithm in fixed-size
// chunks and returns the lowercase hex digest.
func hashFile(path string, algo hasher.Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open for hashing (%s): %s: %w", algo, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := algo.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
