// Package guard decides whether a filesystem request may proceed.
//
// A Policy is built once at startup from the resolved allowed directories
// and is immutable afterwards, so it is safe to share across concurrent
// requests. Resolution only ever calls lstat and realpath; descriptors are
// opened exclusively by the safeio package.
package guard

import (
	"errors"
	"os"
	"path/filepath"

	"fsgate/internal/pathkit"
	"fsgate/pkg/fileops"
)

// Intent says what the caller wants to do with the path. The resolver
// needs it to refuse create-new through an existing symlink.
type Intent int

const (
	IntentRead Intent = iota
	IntentWriteExisting
	IntentCreateNew
	IntentDelete
	IntentRename
)

func (i Intent) String() string {
	switch i {
	case IntentRead:
		return "read"
	case IntentWriteExisting:
		return "write-existing"
	case IntentCreateNew:
		return "create-new"
	case IntentDelete:
		return "delete"
	case IntentRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ResolvedKind distinguishes targets that exist from targets whose parent
// exists.
type ResolvedKind int

const (
	// ResolvedExisting: the path exists; Real is its symlink-resolved form.
	ResolvedExisting ResolvedKind = iota
	// ResolvedNew: the path does not exist but its parent does; Real is
	// the base name joined onto the parent's symlink-resolved form.
	ResolvedNew
)

// Resolved is a validated operation target. Real is the path the I/O
// layer must use.
type Resolved struct {
	Kind       ResolvedKind
	Real       string
	ParentReal string // set for ResolvedNew
	WasSymlink bool   // set for ResolvedExisting
}

// Policy holds the immutable allowed-directory set.
type Policy struct {
	allowedDirs []string
}

// NewPolicy builds a policy over already-resolved allowed directories
// (see ResolveRoots). The slice is copied; later mutation of the argument
// does not affect the policy.
func NewPolicy(allowedDirs []string) *Policy {
	dirs := make([]string, len(allowedDirs))
	copy(dirs, allowedDirs)
	return &Policy{allowedDirs: dirs}
}

// AllowedDirs returns a copy of the allowed directory list.
func (p *Policy) AllowedDirs() []string {
	dirs := make([]string, len(p.allowedDirs))
	copy(dirs, p.allowedDirs)
	return dirs
}

// Contains reports whether an already-canonical path is inside the
// allowed set.
func (p *Policy) Contains(path string) bool {
	return IsWithin(path, p.allowedDirs)
}

// Resolve classifies a caller-supplied path for the given intent.
//
// Existing paths are symlink-resolved and the resolved form must be
// inside the allowed set; a symlink whose target escapes is refused even
// when the normalized input looked safe. Non-existent paths are allowed
// when their parent resolves inside the allowed set, so new files can be
// created. Everything else is rejected with a categorized error.
func (p *Policy) Resolve(raw string, intent Intent) (Resolved, error) {
	normalized, err := pathkit.Normalize(raw)
	if err != nil {
		return Resolved{}, Reject(KindInvalidInput, raw, err)
	}
	return p.resolveNormalized(normalized, intent)
}

func (p *Policy) resolveNormalized(path string, intent Intent) (Resolved, error) {
	info, lerr := os.Lstat(path)

	switch {
	case lerr == nil:
		wasSymlink := info.Mode()&os.ModeSymlink != 0

		// Refuse to treat an existing symlink as a create target before
		// looking where it points; the link itself is the problem.
		if intent == IntentCreateNew && wasSymlink {
			return Resolved{}, Reject(KindSymlinkAtTarget, path, nil)
		}

		real, err := fileops.ResolveSymlink(path)
		if err != nil {
			return Resolved{}, Reject(KindIOError, path, err)
		}
		if !IsWithin(real, p.allowedDirs) {
			return Resolved{}, Reject(KindOutsideRoot, path, nil)
		}
		return Resolved{Kind: ResolvedExisting, Real: real, WasSymlink: wasSymlink}, nil

	case errors.Is(lerr, os.ErrNotExist):
		parent := filepath.Dir(path)
		if parent == path {
			// Ran out of ancestors; the filesystem root itself is gone or
			// unreadable.
			return Resolved{}, Reject(KindIOError, path, lerr)
		}

		parentRes, err := p.resolveNormalized(parent, IntentRead)
		if err != nil {
			return Resolved{}, err
		}
		if parentRes.Kind != ResolvedExisting {
			return Resolved{}, Reject(KindIOError, path, lerr)
		}

		candidate := filepath.Join(parentRes.Real, filepath.Base(path))
		if !IsWithin(candidate, p.allowedDirs) {
			return Resolved{}, Reject(KindOutsideRoot, path, nil)
		}
		return Resolved{Kind: ResolvedNew, Real: candidate, ParentReal: parentRes.Real}, nil

	default:
		return Resolved{}, Reject(KindIOError, path, lerr)
	}
}
