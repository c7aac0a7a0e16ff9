package mcpserver

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsgate/internal/guard"
	"fsgate/internal/logging"
)

func newTestServer(t *testing.T) (*Server, string, string) {
	t.Helper()
	base := t.TempDir()
	allowed := filepath.Join(base, "allowed")
	forbidden := filepath.Join(base, "forbidden")
	require.NoError(t, os.Mkdir(allowed, 0755))
	require.NoError(t, os.Mkdir(forbidden, 0755))

	resolved, skipped := guard.ResolveRoots([]guard.RootDescriptor{{URI: allowed}})
	require.Empty(t, skipped)

	logger, _ := logging.NewTestLogger()
	return NewServer(guard.NewPolicy(resolved), logger), allowed, forbidden
}

func assertKind(t *testing.T, err error, kind guard.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	r, ok := guard.AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, kind, r.Kind)
}

func TestReadFileTool(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	file := filepath.Join(allowed, "doc.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0644))

	text, err := s.readFile(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestReadFileTool_OutsideRoot(t *testing.T) {
	s, _, forbidden := newTestServer(t)
	file := filepath.Join(forbidden, "secret.txt")
	require.NoError(t, os.WriteFile(file, []byte("secret"), 0644))

	_, err := s.readFile(file)
	assertKind(t, err, guard.KindOutsideRoot)
}

func TestReadFileTool_TraversalEscape(t *testing.T) {
	s, allowed, forbidden := newTestServer(t)
	file := filepath.Join(forbidden, "secret.txt")
	require.NoError(t, os.WriteFile(file, []byte("secret"), 0644))

	_, err := s.readFile(allowed + "/../forbidden/secret.txt")
	assertKind(t, err, guard.KindOutsideRoot)
}

func TestWriteFileTool_CreatesAndOverwrites(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	file := filepath.Join(allowed, "notes.txt")

	require.NoError(t, s.writeFile(file, []byte("first")))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, s.writeFile(file, []byte("second")))
	data, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteFileTool_RefusesSymlinkTarget(t *testing.T) {
	s, allowed, forbidden := newTestServer(t)
	secret := filepath.Join(forbidden, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))
	link := filepath.Join(allowed, "link.txt")
	if err := os.Symlink(secret, link); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}

	err := s.writeFile(link, []byte("attack"))
	assertKind(t, err, guard.KindSymlinkAtTarget)

	data, rerr := os.ReadFile(secret)
	require.NoError(t, rerr)
	assert.Equal(t, "secret", string(data))
}

func TestCreateFileTool_FailsOnExisting(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	file := filepath.Join(allowed, "taken.txt")
	require.NoError(t, os.WriteFile(file, []byte("original"), 0644))

	err := s.createFile(file, []byte("late"))
	assertKind(t, err, guard.KindIOError)
	assert.ErrorIs(t, err, os.ErrExist)

	data, rerr := os.ReadFile(file)
	require.NoError(t, rerr)
	assert.Equal(t, "original", string(data))
}

func TestDeleteFileTool(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	file := filepath.Join(allowed, "doomed.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	require.NoError(t, s.deleteFile(file))
	_, err := os.Lstat(file)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteFileTool_Missing(t *testing.T) {
	s, allowed, _ := newTestServer(t)

	err := s.deleteFile(filepath.Join(allowed, "never-was.txt"))
	assertKind(t, err, guard.KindIOError)
}

func TestMoveFileTool(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	src := filepath.Join(allowed, "src.txt")
	dst := filepath.Join(allowed, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, s.moveFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	_, err = os.Lstat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFileTool_DestinationOutside(t *testing.T) {
	s, allowed, forbidden := newTestServer(t)
	src := filepath.Join(allowed, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	err := s.moveFile(src, filepath.Join(forbidden, "dst.txt"))
	assertKind(t, err, guard.KindOutsideRoot)
}

func TestListDirectoryTool(t *testing.T) {
	s, allowed, _ := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(allowed, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(allowed, "sub"), 0755))

	listing, err := s.listDirectory(allowed)
	require.NoError(t, err)
	assert.Contains(t, listing, "[FILE] a.txt")
	assert.Contains(t, listing, "[DIR]  sub")
}

func TestToolError_DoesNotLeakUnrelatedPaths(t *testing.T) {
	s, allowed, forbidden := newTestServer(t)
	secret := filepath.Join(forbidden, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))
	link := filepath.Join(allowed, "link.txt")
	if err := os.Symlink(secret, link); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}

	_, err := s.readFile(link)
	require.Error(t, err)
	r, ok := guard.AsRejection(err)
	require.True(t, ok)

	// The rejection surfaces the caller's path, not the symlink's
	// resolved destination.
	assert.False(t, strings.Contains(r.Error(), "secret.txt"),
		"rejection %q leaks the resolved path", r.Error())
}
