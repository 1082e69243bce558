// Package svn builds argument lists for the Subversion command line tools
// and runs them through a process.Runner.
package svn

import (
	"path/filepath"
	"strings"
)

const (
	ToolLook   = "svnlook"
	ToolAdmin  = "svnadmin"
	ToolClient = "svn"
)

// Command is one tool invocation: which tool, whether the fields are usable,
// and the argument list to pass.
type Command interface {
	Tool() string
	Validate() error
	Args() []string
}

// fileArg keeps a path that starts with a dash from being read as an option.
func fileArg(p string) string {
	if strings.HasPrefix(p, "-") {
		return "." + string(filepath.Separator) + p
	}
	return p
}

type versionCommand struct {
	tool string
}

func (v versionCommand) Tool() string    { return v.tool }
func (v versionCommand) Validate() error { return nil }
func (v versionCommand) Args() []string  { return []string{"--version", "--quiet"} }
