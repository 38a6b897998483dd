//go:build !linux && !darwin

package keeper

// fileDescriptors is unavailable on this platform; the monitoring commands
// omit the file descriptor keys entirely.
func fileDescriptors() (open, max uint64, ok bool) {
	return 0, 0, false
}
