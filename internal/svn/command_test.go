package svn

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/juju/errors"
)

func TestArgs(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		name string
		cmd  Command
		tool string
		want []string
	}{
		{
			name: "look youngest",
			cmd:  Look{Command: "youngest", RepositoryPath: "/srv/svn/app"},
			tool: ToolLook,
			want: []string{"youngest", "/srv/svn/app"},
		},
		{
			name: "look history with limit",
			cmd:  Look{Command: "history", RepositoryPath: "/srv/svn/app", Revision: "42", Limit: 10},
			tool: ToolLook,
			want: []string{"history", "/srv/svn/app", "--revision", "42", "--limit", "10"},
		},
		{
			name: "look dash path",
			cmd:  Look{Command: "info", RepositoryPath: "-repo"},
			tool: ToolLook,
			want: []string{"info", "." + sep + "-repo"},
		},
		{
			name: "admin verify quiet",
			cmd:  Admin{Command: "verify", RepositoryPath: "/srv/svn/app", Quiet: true},
			tool: ToolAdmin,
			want: []string{"verify", "/srv/svn/app", "--quiet"},
		},
		{
			name: "hotcopy",
			cmd:  HotCopy{RepositoryPath: "/srv/svn/app", BackupPath: "/backup/app/v0000042", CleanLogs: true},
			tool: ToolAdmin,
			want: []string{"hotcopy", "/srv/svn/app", "/backup/app/v0000042", "--clean-logs"},
		},
		{
			name: "hotcopy without clean logs",
			cmd:  HotCopy{RepositoryPath: "/srv/svn/app", BackupPath: "/backup/app/v0000042"},
			tool: ToolAdmin,
			want: []string{"hotcopy", "/srv/svn/app", "/backup/app/v0000042"},
		},
		{
			name: "client defaults",
			cmd:  NewClient("info", "file:///srv/svn/app"),
			tool: ToolClient,
			want: []string{"info", "file:///srv/svn/app", "--non-interactive", "--no-auth-cache"},
		},
		{
			name: "client credentials",
			cmd: Client{
				Command: "checkout", Target: "https://svn.example.com/app", LocalPath: "/tmp/wc",
				Username: "backup", Password: "secret", XML: true, Verbose: true,
			},
			tool: ToolClient,
			want: []string{"checkout", "https://svn.example.com/app", "/tmp/wc",
				"--username", "backup", "--password", "secret", "--verbose", "--xml"},
		},
		{
			name: "version",
			cmd:  versionCommand{tool: ToolAdmin},
			tool: ToolAdmin,
			want: []string{"--version", "--quiet"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got := tt.cmd.Tool(); got != tt.tool {
				t.Errorf("Tool() = %q, want %q", got, tt.tool)
			}
			if got := tt.cmd.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"look without command", Look{RepositoryPath: "/srv/svn/app"}},
		{"look without repository", Look{Command: "youngest"}},
		{"look revision and transaction", Look{Command: "info", RepositoryPath: "/r", Revision: "1", Transaction: "1-1"}},
		{"admin without command", Admin{RepositoryPath: "/srv/svn/app"}},
		{"hotcopy without backup", HotCopy{RepositoryPath: "/srv/svn/app"}},
		{"hotcopy without repository", HotCopy{BackupPath: "/backup/app/v0000001"}},
		{"client without command", Client{Target: "file:///r"}},
		{"client password only", Client{Command: "info", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if !errors.Is(err, errors.NotValid) {
				t.Errorf("Validate() = %v, want not valid", err)
			}
		})
	}
}

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	got, err := FileURL(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < len("file:///") || got[:8] != "file:///" {
		t.Errorf("FileURL(%q) = %q", dir, got)
	}
}
