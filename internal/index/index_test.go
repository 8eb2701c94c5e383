package index

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestRelUnix(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "tree")

	tests := []struct {
		name string
		abs  string
		want string
	}{
		{name: "top level", abs: filepath.Join(root, "a.txt"), want: "a.txt"},
		{name: "nested", abs: filepath.Join(root, "sub", "dir", "b.txt"), want: "sub/dir/b.txt"},
		{name: "case preserved", abs: filepath.Join(root, "Sub", "B.TXT"), want: "Sub/B.TXT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelUnix(root, tc.abs); got != tc.want {
				t.Errorf("RelUnix(%q, %q) = %q, want %q", root, tc.abs, got, tc.want)
			}
		})
	}
}

func TestIndexPaths_Sorted(t *testing.T) {
	ix := Index{
		"z/last.txt":  {RelPath: "z/last.txt"},
		"a.txt":       {RelPath: "a.txt"},
		"m/middle.go": {RelPath: "m/middle.go"},
		"a/b.txt":     {RelPath: "a/b.txt"},
	}

	want := []string{"a.txt", "a/b.txt", "m/middle.go", "z/last.txt"}
	if got := ix.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestIndexPaths_Empty(t *testing.T) {
	ix := Index{}
	if got := ix.Paths(); len(got) != 0 {
		t.Errorf("Paths() on empty index = %v, want empty", got)
	}
}
