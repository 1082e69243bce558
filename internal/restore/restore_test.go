package restore

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/process"
	"SvnBackuper/internal/svn"
)

type copyRunner struct {
	calls [][]string
}

func (c *copyRunner) Run(_ context.Context, inv process.Invocation) (process.Result, error) {
	c.calls = append(c.calls, inv.Args)
	if len(inv.Args) < 3 || inv.Args[0] != "hotcopy" {
		return process.Result{Status: process.Complete, ExitCode: 2}, nil
	}
	if _, err := os.Stat(inv.Args[2]); err == nil {
		return process.Result{Status: process.Complete, ExitCode: 1, Stderr: "svnadmin: E000017: already exists"}, nil
	}
	if err := exec.Command("cp", "-R", inv.Args[1], inv.Args[2]).Run(); err != nil {
		return process.Result{Status: process.Error, ExitCode: -1}, err
	}
	return process.Result{Status: process.Complete}, nil
}

func makeRepo(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "format"), []byte("5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "db", "current"), []byte("12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newRestorer(t *testing.T) (*Restorer, *copyRunner) {
	t.Helper()
	bin := t.TempDir()
	name := svn.ToolAdmin
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if err := os.WriteFile(filepath.Join(bin, name), nil, 0o755); err != nil {
		t.Fatal(err)
	}
	r := &copyRunner{}
	return &Restorer{
		Tools:      &svn.Tools{Runner: r, Dir: bin},
		BackupRoot: t.TempDir(),
		Logger:     loggo.GetLogger("test.restore"),
	}, r
}

func TestRestore_Zip(t *testing.T) {
	rs, runner := newRestorer(t)
	src := filepath.Join(t.TempDir(), "v0000012")
	makeRepo(t, src)
	if err := os.MkdirAll(filepath.Join(rs.BackupRoot, "app"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := archive.CompressDir(context.Background(), src, filepath.Join(rs.BackupRoot, "app", "v0000012.zip"), archive.MethodZstd); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "restored")
	rec, err := rs.Restore(context.Background(), "app", "v0000012", target, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Kind != backup.RecordZip {
		t.Errorf("kind = %s", rec.Kind)
	}
	if b, err := os.ReadFile(filepath.Join(target, "db", "current")); err != nil || string(b) != "12\n" {
		t.Errorf("db/current = %q, %v", b, err)
	}
	if len(runner.calls) != 0 {
		t.Error("zip restore should not run svnadmin")
	}
}

func TestRestore_DirectoryUsesHotcopy(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses cp")
	}
	rs, runner := newRestorer(t)
	makeRepo(t, filepath.Join(rs.BackupRoot, "app", "v0000012"))
	target := t.TempDir()

	if _, err := rs.Restore(context.Background(), "app", "v0000012", target, Options{}); err != nil {
		t.Fatal(err)
	}
	if len(runner.calls) != 1 || runner.calls[0][3] != "--clean-logs" {
		t.Errorf("calls = %v", runner.calls)
	}
	if _, err := os.Stat(filepath.Join(target, "format")); err != nil {
		t.Error(err)
	}
}

func TestRestore_Errors(t *testing.T) {
	rs, _ := newRestorer(t)
	makeRepo(t, filepath.Join(rs.BackupRoot, "app", "v0000001"))
	busy := t.TempDir()
	if err := os.WriteFile(filepath.Join(busy, "x"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		repo   string
		label  string
		target string
		is     error
	}{
		{"missing record", "app", "v0000002", filepath.Join(busy, "new"), errors.NotFound},
		{"missing repository", "web", "v0000001", filepath.Join(busy, "new"), errors.NotFound},
		{"non-empty target", "app", "v0000001", busy, errors.AlreadyExists},
		{"bad label", "app", "latest", filepath.Join(busy, "new"), errors.NotValid},
		{"bad repo", "../app", "v0000001", filepath.Join(busy, "new"), errors.NotValid},
		{"empty target", "app", "v0000001", "", errors.NotValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rs.Restore(context.Background(), tt.repo, tt.label, tt.target, Options{})
			if !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestRestore_DryRun(t *testing.T) {
	rs, runner := newRestorer(t)
	makeRepo(t, filepath.Join(rs.BackupRoot, "app", "v0000001"))
	target := filepath.Join(t.TempDir(), "out")
	if _, err := rs.Restore(context.Background(), "app", "v0000001", target, Options{DryRun: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) || len(runner.calls) != 0 {
		t.Error("dry run wrote the target")
	}
}

type fakeFetcher struct {
	src   string
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, repo, label, dst string) (*archive.Manifest, error) {
	f.calls++
	if f.src == "" {
		return nil, fmt.Errorf("no %s/%s", repo, label)
	}
	size, err := archive.CompressDir(ctx, f.src, dst, archive.MethodDeflate)
	if err != nil {
		return nil, err
	}
	rev, _ := svn.ParseLabel(label)
	return &archive.Manifest{Repository: repo, Label: label, Revision: rev, Size: size, Created: time.Now()}, nil
}

func TestFromMirror(t *testing.T) {
	rs, _ := newRestorer(t)
	src := filepath.Join(t.TempDir(), "src")
	makeRepo(t, src)
	f := &fakeFetcher{src: src}
	rs.Fetcher = f

	target := filepath.Join(t.TempDir(), "restored")
	rec, err := rs.FromMirror(context.Background(), "app", "v0000012", target, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f.calls != 1 || rec.Revision != 12 {
		t.Errorf("calls=%d rec=%+v", f.calls, rec)
	}
	if _, err := os.Stat(filepath.Join(target, "format")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(rs.BackupRoot, "app")); !os.IsNotExist(err) {
		t.Error("mirror restore must not write into the backup root")
	}

	f.src = ""
	if _, err := rs.FromMirror(context.Background(), "app", "v0000013", filepath.Join(t.TempDir(), "x"), Options{}); err == nil {
		t.Error("expected fetch error")
	}

	rs.Fetcher = nil
	if _, err := rs.FromMirror(context.Background(), "app", "v0000013", filepath.Join(t.TempDir(), "x"), Options{}); !errors.Is(err, errors.NotValid) {
		t.Errorf("error = %v, want not valid without a mirror", err)
	}
}
