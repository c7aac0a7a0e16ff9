//go:build !windows

package fileops

import (
	"os"
	"syscall"
)

// noFollowFlag makes open refuse to traverse a symlink at the final path
// component; the kernel returns ELOOP instead.
const noFollowFlag = syscall.O_NOFOLLOW

// IsNoFollowError reports whether err is the kernel's refusal to open a
// final-component symlink under O_NOFOLLOW.
func IsNoFollowError(err error) bool {
	pe, ok := err.(*os.PathError)
	return ok && pe.Err == syscall.ELOOP
}
