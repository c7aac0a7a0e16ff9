//go:build !linux

package fileops

import "os"

// ResolveHandle resolves the real path of an already-opened file. Without
// a /proc/self/fd table it falls back to resolving the opened path string,
// which identifies the same inode as long as the path has not been
// re-pointed since the open.
func ResolveHandle(f *os.File) (string, error) {
	return ResolveSymlink(f.Name())
}
