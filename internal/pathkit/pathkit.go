// Package pathkit converts caller-supplied path strings into canonical
// absolute paths in the host OS's native separator convention.
//
// Everything in this package is lexical: no function here touches the
// filesystem beyond looking up the current user's home directory and the
// working directory. Symlink resolution and containment decisions live in
// the guard package.
package pathkit

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrInvalidPath is returned for input that cannot denote a filesystem
// path: empty strings, whitespace-only strings, and strings containing a
// null byte.
var ErrInvalidPath = errors.New("invalid path")

// Normalize converts a raw path string into a canonical absolute path.
//
// The steps, in order: surrounding ASCII whitespace is trimmed, one
// matching pair of surrounding double quotes is stripped, a leading ~ is
// expanded to the user's home directory, Windows hosts convert WSL and
// drive-letter shortcuts to native form, separator runs and . / ..
// segments are resolved lexically (.. past the root clamps at the root),
// relative paths are resolved against the working directory, and a
// trailing separator is trimmed unless the path is a filesystem root.
//
// Percent-encoded sequences and Unicode are passed through untouched;
// café precomposed and decomposed are distinct paths.
func Normalize(raw string) (string, error) {
	path := trimQuotes(strings.TrimSpace(raw))
	if path == "" || strings.ContainsRune(path, 0) {
		return "", ErrInvalidPath
	}

	path = ExpandHome(path)

	if runtime.GOOS == "windows" {
		path = toWindowsPath(path)
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", ErrInvalidPath
		}
		path = abs
	}

	path = filepath.Clean(path)

	if runtime.GOOS == "windows" {
		path = upperDrive(path)
	}

	return path, nil
}

// ExpandHome replaces a leading ~ with the current user's home directory.
// Any other input is returned unchanged; no further normalization happens.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if home directory unavailable
	}

	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConvertToWindowsPath rewrites WSL, slashed-drive and UNC path shapes
// into native Windows form. On non-Windows hosts it only trims whitespace
// and surrounding quotes.
func ConvertToWindowsPath(raw string) string {
	path := trimQuotes(strings.TrimSpace(raw))
	if runtime.GOOS != "windows" {
		return path
	}
	return toWindowsPath(path)
}

// trimQuotes strips one matching pair of surrounding double quotes.
func trimQuotes(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		return path[1 : len(path)-1]
	}
	return path
}

// toWindowsPath is the host-independent core of ConvertToWindowsPath.
// Shapes handled:
//
//	/mnt/c/foo  -> C:\foo   (WSL mount)
//	/c/foo      -> C:\foo   (MSYS-style drive shortcut)
//	c:/foo      -> C:\foo   (slashed drive)
//	//srv/share -> \\srv\share  (UNC, double prefix preserved verbatim)
//
// Remaining forward slashes become backslashes and separator runs inside
// the path collapse to one.
func toWindowsPath(path string) string {
	// UNC: keep exactly one leading double-backslash, normalize the rest.
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//") {
		rest := strings.TrimLeft(path, `/\`)
		return `\\` + collapseBackslashes(slashesToBackslashes(rest))
	}

	// WSL mount: /mnt/<letter>/rest
	if rest, ok := stripDrivePrefix(path, "/mnt/"); ok {
		return rest
	}

	// Bare drive shortcut: /<letter>/rest
	if rest, ok := stripDrivePrefix(path, "/"); ok {
		return rest
	}

	// Slashed or mixed drive form: <letter>:...
	if len(path) >= 2 && isDriveLetter(path[0]) && path[1] == ':' {
		return upperDrive(collapseBackslashes(slashesToBackslashes(path)))
	}

	return collapseBackslashes(slashesToBackslashes(path))
}

// stripDrivePrefix matches prefix + single drive letter + optional rest
// and rewrites it to DRIVE:\rest. The bool reports whether it matched.
func stripDrivePrefix(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := path[len(prefix):]
	if rest == "" || !isDriveLetter(rest[0]) {
		return "", false
	}
	letter := rest[0]
	rest = rest[1:]
	if rest != "" && rest[0] != '/' && rest[0] != '\\' {
		return "", false
	}
	rest = strings.TrimLeft(rest, `/\`)
	drive := strings.ToUpper(string(letter)) + `:\`
	if rest == "" {
		return drive, true
	}
	return drive + collapseBackslashes(slashesToBackslashes(rest)), true
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func slashesToBackslashes(path string) string {
	return strings.ReplaceAll(path, "/", `\`)
}

// collapseBackslashes reduces runs of backslashes to a single one. Callers
// dealing with UNC paths strip and re-attach the double prefix themselves.
func collapseBackslashes(path string) string {
	for strings.Contains(path, `\\`) {
		path = strings.ReplaceAll(path, `\\`, `\`)
	}
	return path
}

// upperDrive uppercases a leading single-letter drive.
func upperDrive(path string) string {
	if len(path) >= 2 && path[1] == ':' && path[0] >= 'a' && path[0] <= 'z' {
		return strings.ToUpper(path[:1]) + path[1:]
	}
	return path
}
