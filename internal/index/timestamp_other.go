//go:build !linux

package index

import "io/fs"

// fileTimestamp falls back to the modification time on platforms without a
// portable way to read the birth time.
func fileTimestamp(_ string, info fs.FileInfo) uint64 {
	if mtime := info.ModTime().Unix(); mtime > 0 {
		return uint64(mtime)
	}
	return 0
}
