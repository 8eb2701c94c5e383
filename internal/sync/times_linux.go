//go:build linux

package sync

import (
	"io/fs"
	"syscall"
	"time"
)

// fileTimes extracts the last-access and last-modification times to carry
// over to a mirrored copy.
func fileTimes(info fs.FileInfo) (atime, mtime time.Time) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	} else {
		atime = info.ModTime()
	}
	return atime, info.ModTime()
}
