package fileops

import (
	"os"
)

// OpenNoFollow opens path read-only without following a symlink at the
// final component. If the final component is a symlink the open fails;
// use IsNoFollowError to recognize that case.
//
// Parameters:
//   - path: Absolute path to open; intermediate symlinks are still
//     followed, only the final component is protected
//
// Returns:
//   - *os.File: Open read-only handle
//   - error: Open errors, including the no-follow refusal
func OpenNoFollow(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|noFollowFlag, 0)
}
