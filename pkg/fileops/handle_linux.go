//go:build linux

package fileops

import (
	"fmt"
	"os"
)

// ResolveHandle returns the real path of an already-opened file by reading
// the /proc/self/fd entry for its descriptor. Unlike resolving the path
// string again, the answer is pinned to the inode the descriptor holds; a
// rename or symlink swap after the open cannot change it.
func ResolveHandle(f *os.File) (string, error) {
	real, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", f.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve open descriptor: %w", err)
	}
	return real, nil
}
