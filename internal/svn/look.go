package svn

import (
	"strconv"

	"github.com/juju/errors"
)

// Look is an svnlook invocation, e.g. "svnlook youngest <repo>".
type Look struct {
	Command        string
	RepositoryPath string
	Revision       string
	Transaction    string
	Limit          int
}

func (l Look) Tool() string { return ToolLook }

func (l Look) Validate() error {
	if l.Command == "" {
		return errors.NotValidf("svnlook without a command")
	}
	if l.RepositoryPath == "" {
		return errors.NotValidf("svnlook %s without a repository path", l.Command)
	}
	if l.Revision != "" && l.Transaction != "" {
		return errors.NotValidf("svnlook %s with both revision and transaction", l.Command)
	}
	return nil
}

func (l Look) Args() []string {
	args := []string{l.Command, fileArg(l.RepositoryPath)}
	if l.Revision != "" {
		args = append(args, "--revision", l.Revision)
	}
	if l.Transaction != "" {
		args = append(args, "--transaction", l.Transaction)
	}
	if l.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(l.Limit))
	}
	return args
}
