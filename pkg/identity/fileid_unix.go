//go:build !windows

package identity

import (
	"os"
	"syscall"
)

// fileIDFromInfo extracts the device/inode pair backing info, on the
// platforms where os.FileInfo.Sys() is a *syscall.Stat_t.
func fileIDFromInfo(info os.FileInfo) (FileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, false
	}
	return FileID{device: uint64(stat.Dev), inode: stat.Ino}, true
}
