package guard

import (
	"os"
	"strings"

	"fsgate/internal/pathkit"
)

// IsWithin reports whether candidate lies inside at least one entry of
// allowedDirs. Both sides are re-normalized before comparing, so callers
// may pass merely-absolute strings; relative entries resolve against the
// working directory.
//
// The comparison is byte-exact on the canonical form with a separator
// suffix on both sides, which makes sibling prefixes ("/a/project" vs
// "/a/project2") distinct and tolerates trailing separators. Exact
// equality counts as inside. The function never fails; anything it cannot
// interpret is outside. A null byte in the candidate or in any allowed
// entry fails the whole call — a corrupted allowed set must not grant
// access off its intact entries.
func IsWithin(candidate string, allowedDirs []string) bool {
	if candidate == "" || strings.ContainsRune(candidate, 0) {
		return false
	}
	if len(allowedDirs) == 0 {
		return false
	}
	for _, dir := range allowedDirs {
		if strings.ContainsRune(dir, 0) {
			return false
		}
	}

	cand, err := pathkit.Normalize(candidate)
	if err != nil {
		return false
	}

	sep := string(os.PathSeparator)
	candWithSep := cand
	if !strings.HasSuffix(candWithSep, sep) {
		candWithSep += sep
	}

	for _, dir := range allowedDirs {
		if dir == "" {
			continue
		}
		normDir, err := pathkit.Normalize(dir)
		if err != nil {
			continue
		}
		if cand == normDir {
			return true
		}
		dirWithSep := normDir
		if !strings.HasSuffix(dirWithSep, sep) {
			dirWithSep += sep
		}
		if strings.HasPrefix(candWithSep, dirWithSep) {
			return true
		}
	}

	return false
}
