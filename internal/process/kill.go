package process

import (
	"os"
	"syscall"

	"github.com/juju/errors"
	gops "github.com/shirou/gopsutil/v3/process"
)

// killTree kills p and every descendant it still has. Descendants are
// collected first because they are reparented once p dies. Killing a process
// that already exited is not an error.
func killTree(p *os.Process) error {
	var descendants []*gops.Process
	if root, err := gops.NewProcess(int32(p.Pid)); err == nil {
		descendants = collectDescendants(root)
	}

	if err := p.Kill(); err != nil && !gone(err) {
		return errors.Annotatef(err, "kill pid %d", p.Pid)
	}
	for _, d := range descendants {
		if err := d.Kill(); err != nil && !gone(err) {
			return errors.Annotatef(err, "kill descendant pid %d", d.Pid)
		}
	}
	return nil
}

func collectDescendants(p *gops.Process) []*gops.Process {
	children, err := p.Children()
	if err != nil {
		return nil
	}
	var out []*gops.Process
	for _, c := range children {
		out = append(out, c)
		out = append(out, collectDescendants(c)...)
	}
	return out
}

func gone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, gops.ErrorProcessNotRunning)
}
