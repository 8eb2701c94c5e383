package index

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dirsnap/dirsnap/internal/hasher"
	"github.com/dirsnap/dirsnap/internal/testutil"
)

func TestBuild(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"a.txt":         "alpha",
		"sub/b.txt":     "beta",
		"sub/deep/c.md": "gamma",
	})

	paths := []string{
		filepath.Join(root, "sub", "deep", "c.md"),
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.txt"),
	}

	ix, err := Build(context.Background(), root, paths, hasher.Blake3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantPaths := []string{"a.txt", "sub/b.txt", "sub/deep/c.md"}
	if got := ix.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Fatalf("index paths = %v, want %v", got, wantPaths)
	}

	e := ix["a.txt"]
	if e.Size != uint64(len("alpha")) {
		t.Errorf("a.txt size = %d, want %d", e.Size, len("alpha"))
	}
	if len(e.HashHex) != hasher.Blake3.HexLen() {
		t.Errorf("a.txt digest %q has wrong width", e.HashHex)
	}
	if e.TStamp == 0 {
		t.Error("a.txt timestamp should not be zero for a fresh file")
	}
}

func TestBuild_DeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"one.txt":     "one",
		"two.txt":     "two",
		"sub/3.txt":   "three",
		"sub/4.txt":   "four",
		"sub/x/5.txt": "five",
	})

	var paths []string
	for _, rel := range []string{"one.txt", "two.txt", "sub/3.txt", "sub/4.txt", "sub/x/5.txt"} {
		paths = append(paths, filepath.Join(root, filepath.FromSlash(rel)))
	}

	first, err := Build(context.Background(), root, paths, hasher.XXH64)
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := Build(context.Background(), root, paths, hasher.XXH64)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("index sizes differ: %d vs %d", len(first), len(second))
	}
	for rel, e := range first {
		if second[rel].HashHex != e.HashHex {
			t.Errorf("%s: hash differs between runs: %s vs %s", rel, e.HashHex, second[rel].HashHex)
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	ix, err := Build(context.Background(), t.TempDir(), nil, hasher.Blake3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ix) != 0 {
		t.Errorf("expected empty index, got %d entries", len(ix))
	}
}

func TestBuild_MissingFileFailsWholeBuild(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"ok.txt": "fine"})

	paths := []string{
		filepath.Join(root, "ok.txt"),
		filepath.Join(root, "gone.txt"),
	}

	ix, err := Build(context.Background(), root, paths, hasher.SHA256)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if ix != nil {
		t.Errorf("partial index should not be returned, got %d entries", len(ix))
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, root, []string{filepath.Join(root, "a.txt")}, hasher.Blake3); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestBuild_HashChangesWithContent(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"f.txt": "before"})
	path := []string{filepath.Join(root, "f.txt")}

	before, err := Build(context.Background(), root, path, hasher.Blake3)
	if err != nil {
		t.Fatal(err)
	}

	testutil.WriteTree(t, root, map[string]string{"f.txt": "after"})
	after, err := Build(context.Background(), root, path, hasher.Blake3)
	if err != nil {
		t.Fatal(err)
	}

	if before["f.txt"].HashHex == after["f.txt"].HashHex {
		t.Error("hash should change when content changes")
	}
}
