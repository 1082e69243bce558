package svn

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// Client is an svn invocation against a URL or working copy.
type Client struct {
	Command        string
	Target         string
	LocalPath      string
	Username       string
	Password       string
	Message        string
	Force          bool
	Verbose        bool
	XML            bool
	NonInteractive bool
	NoAuthCache    bool
}

// NewClient returns a client command that never prompts and never caches
// credentials.
func NewClient(command, target string) Client {
	return Client{
		Command:        command,
		Target:         target,
		NonInteractive: true,
		NoAuthCache:    true,
	}
}

func (c Client) Tool() string { return ToolClient }

func (c Client) Validate() error {
	if c.Command == "" {
		return errors.NotValidf("svn without a command")
	}
	if c.Password != "" && c.Username == "" {
		return errors.NotValidf("svn password without username")
	}
	return nil
}

func (c Client) Args() []string {
	args := []string{c.Command}
	if c.Target != "" {
		args = append(args, fileArg(c.Target))
	}
	if c.LocalPath != "" {
		args = append(args, fileArg(c.LocalPath))
	}
	if c.Username != "" {
		args = append(args, "--username", c.Username)
	}
	if c.Password != "" {
		args = append(args, "--password", c.Password)
	}
	if c.Message != "" {
		args = append(args, "--message", c.Message)
	}
	if c.Force {
		args = append(args, "--force")
	}
	if c.Verbose {
		args = append(args, "--verbose")
	}
	if c.XML {
		args = append(args, "--xml")
	}
	if c.NonInteractive {
		args = append(args, "--non-interactive")
	}
	if c.NoAuthCache {
		args = append(args, "--no-auth-cache")
	}
	return args
}

// FileURL converts a local repository path to a file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}
