//go:build windows

package fileops

// Windows has no O_NOFOLLOW; CreateFile follows reparse points unless
// opened with FILE_FLAG_OPEN_REPARSE_POINT, which os.OpenFile does not
// expose. Symlink creation needs elevation on Windows, so the resolver's
// lstat check carries the protection there.
const noFollowFlag = 0

// IsNoFollowError always reports false on Windows; there is no no-follow
// open to fail.
func IsNoFollowError(err error) bool {
	return false
}
