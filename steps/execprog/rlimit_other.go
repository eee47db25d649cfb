//go:build !linux

package execprog

import "errors"

func applyMemoryLimit(pid int, memoryMB int64) error {
	return errors.New("memory ceilings are only supported on linux")
}
