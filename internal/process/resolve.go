package process

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/juju/errors"
)

// Resolve returns the executable for tool. With a tool directory the path is
// the directory joined with the tool file name; otherwise the name is looked
// up on PATH.
func Resolve(dir, tool string) (string, error) {
	if tool == "" {
		return "", errors.NotValidf("empty tool name")
	}
	name := tool
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	if dir == "" {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", errors.NewNotFound(err, "tool "+tool+" not on PATH")
		}
		return path, nil
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewNotFound(err, "tool "+tool+" not found in "+dir)
	}
	if info.IsDir() {
		return "", errors.NotFoundf("executable %s", path)
	}
	return path, nil
}
