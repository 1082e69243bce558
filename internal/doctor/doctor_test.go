package doctor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"SvnBackuper/internal/config"
	"SvnBackuper/internal/process"
	"SvnBackuper/internal/svn"
)

type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, inv process.Invocation) (process.Result, error) {
	tool := strings.TrimSuffix(filepath.Base(inv.Path), ".exe")
	f.calls = append(f.calls, tool+" "+strings.Join(inv.Args, " "))
	switch {
	case tool == svn.ToolClient && inv.Args[0] == "info":
		return process.Result{Status: process.Complete, Stdout: "Revision: 3\n"}, nil
	case inv.Args[0] == "--version":
		return process.Result{Status: process.Complete, Stdout: "1.14.3\n"}, nil
	}
	return process.Result{Status: process.Complete, ExitCode: 1}, nil
}

func setup(t *testing.T, tools ...string) (*config.Config, *svn.Tools, *fakeRunner) {
	t.Helper()
	tmp := t.TempDir()
	repos := filepath.Join(tmp, "repos")
	if err := os.MkdirAll(filepath.Join(repos, "app", "db"), 0o755); err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(tmp, "bin")
	if err := os.Mkdir(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range tools {
		if runtime.GOOS == "windows" {
			n += ".exe"
		}
		if err := os.WriteFile(filepath.Join(bin, n), nil, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	r := &fakeRunner{}
	cfg := &config.Config{
		RepositoryRoot: repos,
		BackupRoot:     filepath.Join(tmp, "backups"),
		Lock:           &config.LockConfig{Enabled: true, Dir: filepath.Join(tmp, "lock")},
	}
	return cfg, &svn.Tools{Runner: r, Dir: bin}, r
}

func byName(results []CheckResult) map[string]CheckResult {
	m := make(map[string]CheckResult)
	for _, r := range results {
		m[r.Name] = r
	}
	return m
}

func TestRun_AllTools(t *testing.T) {
	cfg, tools, runner := setup(t, svn.ToolLook, svn.ToolAdmin, svn.ToolClient)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	results := Run(context.Background(), cfg, Options{ConfigPath: cfgPath, Tools: tools})
	m := byName(results)
	for _, name := range []string{"config", "repositories", svn.ToolLook, svn.ToolAdmin, svn.ToolClient, "lock"} {
		if m[name].Status != OK {
			t.Errorf("%s = %s: %s", name, m[name].Status, m[name].Detail)
		}
	}
	if m["backup root"].Status != Warn {
		t.Errorf("missing backup root should warn, got %s", m["backup root"].Status)
	}
	if _, ok := m["s3"]; ok {
		t.Error("s3 checked while disabled")
	}
	if Failed(results) {
		t.Error("Failed = true")
	}
	var sawInfo bool
	for _, c := range runner.calls {
		if strings.HasPrefix(c, "svn info file://") && strings.HasSuffix(c, "--non-interactive --no-auth-cache") {
			sawInfo = true
		}
	}
	if !sawInfo {
		t.Errorf("calls = %v", runner.calls)
	}
}

func TestRun_MissingTools(t *testing.T) {
	cfg, tools, _ := setup(t, svn.ToolLook)
	cfg.RepositoryRoot = filepath.Join(cfg.RepositoryRoot, "missing")
	results := Run(context.Background(), cfg, Options{Tools: tools})
	m := byName(results)
	if m[svn.ToolAdmin].Status != Fail {
		t.Errorf("svnadmin = %+v", m[svn.ToolAdmin])
	}
	if m[svn.ToolClient].Status != Warn {
		t.Errorf("svn client should only warn: %+v", m[svn.ToolClient])
	}
	if m["repositories"].Status != Fail {
		t.Errorf("repositories = %+v", m["repositories"])
	}
	if !Failed(results) {
		t.Error("Failed = false")
	}
}

func TestRun_PermissiveConfig(t *testing.T) {
	cfg, _, _ := setup(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m := byName(Run(context.Background(), cfg, Options{ConfigPath: cfgPath}))
	if m["config"].Status != Warn {
		t.Errorf("config = %+v", m["config"])
	}
}

func TestRun_NilConfig(t *testing.T) {
	results := Run(context.Background(), nil, Options{})
	if len(results) != 1 || results[0].Status != Fail {
		t.Errorf("results = %+v", results)
	}
}
