package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	for i := 0; i < 2; i++ {
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir #%d: %v", i+1, err)
		}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(path); err == nil {
		t.Error("EnsureDir over a regular file should fail")
	}
}

func TestRemoveAll_ReadOnlyTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "v0000003")
	nested := filepath.Join(root, "db", "revs", "0")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(root, "format"),
		filepath.Join(root, "db", "current"),
		filepath.Join(nested, "1"),
	} {
		if err := os.WriteFile(p, []byte("data"), 0444); err != nil {
			t.Fatal(err)
		}
	}
	for _, d := range []string{nested, filepath.Join(root, "db", "revs"), filepath.Join(root, "db")} {
		if err := os.Chmod(d, 0555); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() { _ = filepath.Walk(root, func(p string, _ os.FileInfo, _ error) error { return os.Chmod(p, 0755) }) })

	if err := RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if Exists(root) {
		t.Error("tree still exists")
	}
}

func TestRemoveAll_UnreadableDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "v0000004")
	locked := filepath.Join(root, "locks")
	if err := os.MkdirAll(locked, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(locked, "db.lock"), nil, 0444); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	if err := RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if Exists(root) {
		t.Error("tree still exists")
	}
}

func TestRemoveAll_MissingAndFile(t *testing.T) {
	dir := t.TempDir()
	if err := RemoveAll(filepath.Join(dir, "nope")); err != nil {
		t.Errorf("RemoveAll(missing) = %v", err)
	}
	f := filepath.Join(dir, "v0000001.zip")
	if err := os.WriteFile(f, []byte("zip"), 0444); err != nil {
		t.Fatal(err)
	}
	if err := RemoveAll(f); err != nil {
		t.Fatalf("RemoveAll(file): %v", err)
	}
	if Exists(f) {
		t.Error("file still exists")
	}
}

func TestIsRepository(t *testing.T) {
	repo := t.TempDir()
	if IsRepository(repo) {
		t.Error("empty dir reported as repository")
	}
	if err := os.WriteFile(filepath.Join(repo, RepositoryMarker), []byte("5\n"), 0444); err != nil {
		t.Fatal(err)
	}
	if IsRepository(repo) {
		t.Error("format without db reported as repository")
	}
	if err := os.Mkdir(filepath.Join(repo, "db"), 0755); err != nil {
		t.Fatal(err)
	}
	if !IsRepository(repo) {
		t.Error("format + db should be a repository")
	}
}
