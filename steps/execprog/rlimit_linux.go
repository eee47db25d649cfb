//go:build linux

package execprog

import (
	"golang.org/x/sys/unix"
)

// applyMemoryLimit places an address-space ceiling on an already started
// process. This is the local-mode stand-in for the scheduler's memory
// directive; on a real cluster the scheduler enforces it instead.
func applyMemoryLimit(pid int, memoryMB int64) error {
	limit := uint64(memoryMB) * 1024 * 1024
	rlim := unix.Rlimit{Cur: limit, Max: limit}
	return unix.Prlimit(pid, unix.RLIMIT_AS, &rlim, nil)
}
