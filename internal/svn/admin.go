package svn

import "github.com/juju/errors"

// Admin is an svnadmin invocation. Extra holds subcommand specific
// arguments placed after the repository path.
type Admin struct {
	Command        string
	RepositoryPath string
	Quiet          bool
	Extra          []string
}

func (a Admin) Tool() string { return ToolAdmin }

func (a Admin) Validate() error {
	if a.Command == "" {
		return errors.NotValidf("svnadmin without a command")
	}
	if a.RepositoryPath == "" {
		return errors.NotValidf("svnadmin %s without a repository path", a.Command)
	}
	return nil
}

func (a Admin) Args() []string {
	args := []string{a.Command, fileArg(a.RepositoryPath)}
	args = append(args, a.Extra...)
	if a.Quiet {
		args = append(args, "--quiet")
	}
	return args
}

// HotCopy is "svnadmin hotcopy <repo> <backup>", a consistent copy of a
// live repository.
type HotCopy struct {
	RepositoryPath string
	BackupPath     string
	CleanLogs      bool
}

func (h HotCopy) Tool() string { return ToolAdmin }

func (h HotCopy) Validate() error {
	if h.BackupPath == "" {
		return errors.NotValidf("hotcopy without a backup path")
	}
	return h.admin().Validate()
}

func (h HotCopy) Args() []string {
	return h.admin().Args()
}

func (h HotCopy) admin() Admin {
	extra := []string{fileArg(h.BackupPath)}
	if h.CleanLogs {
		extra = append(extra, "--clean-logs")
	}
	return Admin{Command: "hotcopy", RepositoryPath: h.RepositoryPath, Extra: extra}
}
