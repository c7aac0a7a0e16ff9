package guard

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every way a filesystem request can be refused.
// The set is closed; callers switch on it to translate rejections into
// their own protocol errors.
type ErrorKind int

const (
	// KindInvalidInput covers non-path input: empty strings, null bytes,
	// malformed file:// URIs.
	KindInvalidInput ErrorKind = iota
	// KindOutsideRoot means the canonical path is not within any allowed
	// directory.
	KindOutsideRoot
	// KindSymlinkAtTarget means a create or overwrite was refused because
	// the target is (or became) a symlink.
	KindSymlinkAtTarget
	// KindRaceTargetAppeared means an exclusive create failed because
	// something appeared at the target between resolve and open.
	KindRaceTargetAppeared
	// KindIOError covers syscall failures not attributable to policy:
	// permissions, symlink loops, missing parents.
	KindIOError
	// KindNotDirectory is surfaced by root resolution only, for a root
	// descriptor that does not point at a directory.
	KindNotDirectory
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindOutsideRoot:
		return "outside allowed directories"
	case KindSymlinkAtTarget:
		return "symlink at target"
	case KindRaceTargetAppeared:
		return "target appeared during operation"
	case KindIOError:
		return "I/O error"
	case KindNotDirectory:
		return "not a directory"
	default:
		return "unknown"
	}
}

// Rejection is the policy error type. Path holds the caller-supplied or
// normalized path the decision was made about; it never carries a
// canonical path the caller did not already know about.
type Rejection struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Path, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Path)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Reject builds a Rejection as an error value.
func Reject(kind ErrorKind, path string, err error) *Rejection {
	return &Rejection{Kind: kind, Path: path, Err: err}
}

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// KindOf reports the ErrorKind of err, defaulting to KindIOError for
// errors that did not come from this package.
func KindOf(err error) ErrorKind {
	if r, ok := AsRejection(err); ok {
		return r.Kind
	}
	return KindIOError
}
