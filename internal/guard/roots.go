package guard

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"runtime"
	"strings"

	"fsgate/internal/logging"
	"fsgate/internal/pathkit"
	"fsgate/pkg/fileops"
)

// RootDescriptor is one operator-supplied root: a plain path or a file://
// URI, optionally named for log surfacing.
type RootDescriptor struct {
	URI  string
	Name string
}

// SkippedRoot records a descriptor that did not make it into the allowed
// set, and why.
type SkippedRoot struct {
	URI  string
	Kind ErrorKind
	Err  error
}

// windowsDrivePath matches the /C:/... shape a file:// URI produces for a
// Windows drive path.
var windowsDrivePath = regexp.MustCompile(`^/[a-zA-Z]:`)

// ResolveRoots converts root descriptors into the canonical allowed
// directory list: file:// URIs are unwrapped, paths normalized, symlinks
// resolved, and only real directories are kept. A bad entry is skipped
// with a reason; it never fails the batch. The result is deduplicated in
// insertion order.
//
// Resolving symlinks here is what keeps later containment checks
// consistent: an access through a symlinked root and one through the
// resolved root must reach the same verdict.
func ResolveRoots(descriptors []RootDescriptor) ([]string, []SkippedRoot) {
	var (
		resolved []string
		skipped  []SkippedRoot
		seen     = make(map[string]struct{})
	)

	for _, desc := range descriptors {
		dir, err := resolveRoot(desc.URI)
		if err != nil {
			kind := KindOf(err)
			logging.Warn("Skipping root", "uri", desc.URI, "name", desc.Name, "reason", kind.String(), "error", err)
			skipped = append(skipped, SkippedRoot{URI: desc.URI, Kind: kind, Err: err})
			continue
		}

		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		resolved = append(resolved, dir)
		logging.Debug("Registered allowed directory", "dir", dir, "name", desc.Name)
	}

	return resolved, skipped
}

// resolveRoot takes a single descriptor URI to a verified real directory.
func resolveRoot(uri string) (string, error) {
	path := uri
	if strings.HasPrefix(uri, "file://") {
		p, err := pathFromFileURI(uri)
		if err != nil {
			return "", Reject(KindInvalidInput, uri, err)
		}
		path = p
	}

	normalized, err := pathkit.Normalize(path)
	if err != nil {
		return "", Reject(KindInvalidInput, uri, err)
	}

	real, err := fileops.ResolveSymlink(normalized)
	if err != nil {
		return "", Reject(KindIOError, normalized, err)
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", Reject(KindIOError, real, err)
	}
	if !info.IsDir() {
		return "", Reject(KindNotDirectory, real, nil)
	}

	return real, nil
}

// pathFromFileURI unwraps a file:// URI into a filesystem path. Only an
// empty or localhost host component is accepted.
func pathFromFileURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("malformed file URI: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported URI scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("unsupported file URI host %q", u.Host)
	}

	p := u.Path
	if p == "" {
		return "", fmt.Errorf("file URI has no path")
	}

	// file:///C:/dir parses to /C:/dir; drop the leading slash on Windows.
	if runtime.GOOS == "windows" && windowsDrivePath.MatchString(p) {
		p = p[1:]
	}

	return p, nil
}
