// Package safeio performs the actual filesystem I/O for validated
// targets. It is the only package allowed to open file descriptors; the
// guard package validates, safeio executes.
//
// Every operation is built on a kernel primitive that closes the window
// between guard.Policy.Resolve and the syscall: exclusive create for new
// files, temp-file-plus-rename for overwrites, no-follow open for reads,
// and plain unlink for deletes. An adversarial change in that window
// surfaces as a categorized error, never as a write through a symlink.
package safeio

import (
	"io"
	"os"

	"fsgate/internal/guard"
	"fsgate/internal/logging"
	"fsgate/pkg/fileops"
)

const defaultFileMode = 0o644

// Ops executes filesystem operations on targets resolved by a Policy.
type Ops struct {
	policy *guard.Policy
}

// NewOps binds the I/O layer to the policy whose resolutions it accepts.
func NewOps(policy *guard.Policy) *Ops {
	return &Ops{policy: policy}
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// ReadFile reads a resolved existing file. The open refuses a symlink at
// the final component, and the opened descriptor's real path is
// containment-checked once more as defense in depth. Checking the
// descriptor rather than the path string pins the verdict to the inode
// actually opened.
func (o *Ops) ReadFile(res guard.Resolved) ([]byte, error) {
	if res.Kind != guard.ResolvedExisting {
		return nil, guard.Reject(guard.KindInvalidInput, res.Real, nil)
	}

	f, err := fileops.OpenNoFollow(res.Real)
	if err != nil {
		if fileops.IsNoFollowError(err) {
			// The resolved target was swapped for a symlink after resolve.
			return nil, guard.Reject(guard.KindSymlinkAtTarget, res.Real, err)
		}
		return nil, guard.Reject(guard.KindIOError, res.Real, err)
	}
	defer f.Close()

	real, err := fileops.ResolveHandle(f)
	if err != nil {
		return nil, guard.Reject(guard.KindIOError, res.Real, err)
	}
	if !o.policy.Contains(real) {
		return nil, guard.Reject(guard.KindOutsideRoot, res.Real, nil)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, guard.Reject(guard.KindIOError, res.Real, err)
	}
	return data, nil
}

// WriteNewFile creates a file that must not exist yet. If anything
// appeared at the target since resolve — including an attacker's symlink —
// the exclusive create fails and the write is refused; there is no
// overwrite fallback.
func (o *Ops) WriteNewFile(res guard.Resolved, data []byte) error {
	if res.Kind != guard.ResolvedNew {
		return guard.Reject(guard.KindInvalidInput, res.Real, nil)
	}

	if err := fileops.WriteFileExclusive(res.Real, data, defaultFileMode); err != nil {
		if os.IsExist(err) {
			logging.Warn("Target appeared between resolve and create", "path", res.Real)
			return guard.Reject(guard.KindRaceTargetAppeared, res.Real, err)
		}
		return guard.Reject(guard.KindIOError, res.Real, err)
	}
	return nil
}

// OverwriteExistingFile atomically replaces a resolved regular file. The
// new contents land in a random-named sibling temp file first and are
// renamed onto the target; rename replaces a destination entry without
// traversing it, so a symlink racing into place is itself replaced and
// its target is untouched.
func (o *Ops) OverwriteExistingFile(res guard.Resolved, data []byte) error {
	if res.Kind != guard.ResolvedExisting {
		return guard.Reject(guard.KindInvalidInput, res.Real, nil)
	}
	if res.WasSymlink {
		return guard.Reject(guard.KindSymlinkAtTarget, res.Real, nil)
	}

	if err := fileops.AtomicReplace(res.Real, data, defaultFileMode); err != nil {
		return guard.Reject(guard.KindIOError, res.Real, err)
	}
	return nil
}

// DeletePath unlinks a resolved existing path. Directories must be empty;
// nothing is removed recursively, so a symlink cannot drag outside
// content into the deletion.
func (o *Ops) DeletePath(res guard.Resolved) error {
	if res.Kind != guard.ResolvedExisting {
		return guard.Reject(guard.KindInvalidInput, res.Real, nil)
	}

	if err := os.Remove(res.Real); err != nil {
		return guard.Reject(guard.KindIOError, res.Real, err)
	}
	return nil
}

// RenamePath moves src onto dst. The destination must either not exist
// yet or be an existing non-symlink; rename itself never traverses a
// destination symlink, so a racing link is replaced, not followed.
func (o *Ops) RenamePath(src, dst guard.Resolved) error {
	if src.Kind != guard.ResolvedExisting {
		return guard.Reject(guard.KindInvalidInput, src.Real, nil)
	}
	if dst.Kind == guard.ResolvedExisting && dst.WasSymlink {
		return guard.Reject(guard.KindSymlinkAtTarget, dst.Real, nil)
	}

	if err := os.Rename(src.Real, dst.Real); err != nil {
		return guard.Reject(guard.KindIOError, src.Real, err)
	}
	return nil
}

// ListDir lists a resolved existing directory, one level deep.
func (o *Ops) ListDir(res guard.Resolved) ([]DirEntry, error) {
	if res.Kind != guard.ResolvedExisting {
		return nil, guard.Reject(guard.KindInvalidInput, res.Real, nil)
	}

	entries, err := os.ReadDir(res.Real)
	if err != nil {
		return nil, guard.Reject(guard.KindIOError, res.Real, err)
	}

	listing := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		listing = append(listing, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return listing, nil
}
