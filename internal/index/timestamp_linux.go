//go:build linux

package index

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// fileTimestamp returns the file's birth time in seconds since epoch when
// the filesystem exposes one via statx, falling back to the modification
// time, and to zero when neither is usable.
func fileTimestamp(path string, info fs.FileInfo) uint64 {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx)
	if err == nil && stx.Mask&unix.STATX_BTIME != 0 && stx.Btime.Sec > 0 {
		return uint64(stx.Btime.Sec)
	}

	if mtime := info.ModTime().Unix(); mtime > 0 {
		return uint64(mtime)
	}
	return 0
}
