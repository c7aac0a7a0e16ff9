package guard

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func createSymlink(t *testing.T, oldname, newname string) {
	t.Helper()
	if err := os.Symlink(oldname, newname); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}
}

func realDir(t *testing.T, dir string) string {
	t.Helper()
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", dir, err)
	}
	return real
}

func TestResolveRoots_PlainPaths(t *testing.T) {
	dir := t.TempDir()

	resolved, skipped := ResolveRoots([]RootDescriptor{{URI: dir, Name: "workspace"}})
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(resolved) != 1 || resolved[0] != realDir(t, dir) {
		t.Errorf("resolved = %v, want [%s]", resolved, realDir(t, dir))
	}
}

func TestResolveRoots_FileURI(t *testing.T) {
	dir := t.TempDir()

	resolved, skipped := ResolveRoots([]RootDescriptor{{URI: "file://" + dir, Name: "workspace"}})
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(resolved) != 1 || resolved[0] != realDir(t, dir) {
		t.Errorf("resolved = %v, want [%s]", resolved, realDir(t, dir))
	}
}

func TestResolveRoots_SymlinkedRootIsResolved(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "target")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	link := filepath.Join(base, "link")
	createSymlink(t, target, link)

	resolved, skipped := ResolveRoots([]RootDescriptor{{URI: link}})
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	want := realDir(t, target)
	if len(resolved) != 1 || resolved[0] != want {
		t.Errorf("resolved = %v, want [%s]", resolved, want)
	}
}

func TestResolveRoots_SkipsBadEntriesWithoutAbortingBatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	descriptors := []RootDescriptor{
		{URI: filepath.Join(dir, "missing")},
		{URI: file},
		{URI: "file://remotehost/share"},
		{URI: ""},
		{URI: dir},
	}

	resolved, skipped := ResolveRoots(descriptors)

	if len(resolved) != 1 || resolved[0] != realDir(t, dir) {
		t.Fatalf("resolved = %v, want just the good directory", resolved)
	}
	if len(skipped) != 4 {
		t.Fatalf("skipped = %+v, want 4 entries", skipped)
	}

	kinds := map[string]ErrorKind{}
	for _, s := range skipped {
		kinds[s.URI] = s.Kind
	}
	if kinds[filepath.Join(dir, "missing")] != KindIOError {
		t.Errorf("missing dir skipped as %v, want IO error", kinds[filepath.Join(dir, "missing")])
	}
	if kinds[file] != KindNotDirectory {
		t.Errorf("regular file skipped as %v, want not-a-directory", kinds[file])
	}
	if kinds["file://remotehost/share"] != KindInvalidInput {
		t.Errorf("remote URI skipped as %v, want invalid input", kinds["file://remotehost/share"])
	}
	if kinds[""] != KindInvalidInput {
		t.Errorf("empty URI skipped as %v, want invalid input", kinds[""])
	}
}

func TestResolveRoots_Deduplicates(t *testing.T) {
	dir := t.TempDir()

	resolved, skipped := ResolveRoots([]RootDescriptor{
		{URI: dir},
		{URI: dir + string(os.PathSeparator)},
		{URI: "file://" + dir},
	})
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(resolved) != 1 {
		t.Errorf("resolved = %v, want a single deduplicated entry", resolved)
	}
}

func TestResolveRoots_InsertionOrderPreserved(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	resolved, _ := ResolveRoots([]RootDescriptor{{URI: b}, {URI: a}})
	if len(resolved) != 2 {
		t.Fatalf("resolved = %v, want 2 entries", resolved)
	}
	if resolved[0] != realDir(t, b) || resolved[1] != realDir(t, a) {
		t.Errorf("order not preserved: %v", resolved)
	}
}
