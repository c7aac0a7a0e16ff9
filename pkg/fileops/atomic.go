package fileops

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// CreateExclusive opens path for writing with O_CREAT|O_EXCL semantics:
// the call fails if anything already exists at path, including a symlink
// that appeared after the caller validated the path.
//
// Parameters:
//   - path: Absolute path to create
//   - perm: Permission bits for the new file
//
// Returns:
//   - *os.File: Open handle to the newly created file
//   - error: os.ErrExist (via os.IsExist) when the target already exists,
//     or other filesystem errors
//
// Security considerations:
//   - The exclusive flag is the TOCTOU closure for "write new file":
//     an attacker creating a symlink at the target between validation and
//     open makes this call fail instead of redirecting the write.
func CreateExclusive(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

// WriteFileExclusive writes data to a file that must not exist yet.
// On any failure after creation the partially written file is removed.
//
// Parameters:
//   - path: Absolute path to create
//   - data: File contents
//   - perm: Permission bits for the new file
//
// Returns:
//   - error: Creation or write errors; os.IsExist distinguishes an
//     already-existing target
func WriteFileExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := CreateExclusive(path, perm)
	if err != nil {
		return err
	}

	var writeSuccess bool
	defer func() {
		f.Close()
		if !writeSuccess {
			os.Remove(path) // Clean up on failure
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	writeSuccess = true
	return nil
}

// AtomicReplace atomically replaces the file at destPath with data.
// The visible file either has the old contents or the new contents;
// partial writes are impossible.
//
// The function uses a temporary file approach:
//  1. Creates a randomly named sibling temp file with exclusive-create
//  2. Writes all data to the temporary file
//  3. Syncs data to disk to ensure durability
//  4. Atomically renames the temporary file onto the destination
//
// Parameters:
//   - destPath: Absolute path to the file being replaced
//   - data: New file contents
//   - perm: Permission bits used for the temp file
//
// Returns:
//   - error: Temp file creation, write, or rename errors
//
// Security considerations:
//   - The temp name carries a UUID (122 random bits), so concurrent
//     replacements of files in the same directory cannot collide.
//   - rename(2) replaces the destination entry without traversing it: if
//     the destination has become a symlink since validation, the symlink
//     entry itself is replaced and its original target is untouched.
//   - Temporary files are cleaned up on any failure.
func AtomicReplace(destPath string, data []byte, perm os.FileMode) error {
	tempPath := fmt.Sprintf("%s.tmp.%s", destPath, uuid.NewString())

	tempFile, err := CreateExclusive(tempPath, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	// Ensure cleanup of temp file if anything goes wrong
	var replaceSuccess bool
	defer func() {
		tempFile.Close()
		if !replaceSuccess {
			os.Remove(tempPath) // Clean up on failure
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Atomic rename - this is the atomic operation
	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	replaceSuccess = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent
// directories. This is equivalent to `mkdir -p` and is safe to call
// multiple times.
//
// The function sets directory permissions to 0755 (readable and executable
// by all, writable by owner only).
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
