//go:build linux || darwin

package keeper

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileDescriptors reports the process's open and maximum file descriptor
// counts. The open count comes from /proc/self/fd where available; the
// limit from RLIMIT_NOFILE.
func fileDescriptors() (open, max uint64, ok bool) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, 0, false
	}

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		// No procfs (e.g. darwin). Report the limit alone rather than
		// dropping both values.
		return 0, limit.Cur, true
	}
	return uint64(len(entries)), limit.Cur, true
}
