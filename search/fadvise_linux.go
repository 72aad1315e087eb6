//go:build linux

package search

import (
	"os"

	"golang.org/x/sys/unix"
)

// dropPageCache hints the kernel that the file's cached pages are no longer needed.
func dropPageCache(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
