package process

import (
	"os"
	"sort"
	"strings"
	"time"
)

// Invocation describes one external program run. It is built right before
// Run and discarded afterwards.
type Invocation struct {
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
	Env     map[string]string

	// Optional per-line callbacks, called from the drain goroutines.
	OnStdout func(line string)
	OnStderr func(line string)
}

type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Pid      int
	Duration time.Duration
}

// Success reports whether the program ran to completion with exit code 0.
func (r Result) Success() bool {
	return r.Status == Complete && r.ExitCode == 0
}

func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Path
	}
	return inv.Path + " " + strings.Join(inv.Args, " ")
}

// environ returns nil (inherit) when there are no overrides.
func (inv Invocation) environ() []string {
	if len(inv.Env) == 0 {
		return nil
	}
	base := os.Environ()
	env := make([]string, 0, len(base)+len(inv.Env))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := inv.Env[name]; overridden {
			continue
		}
		env = append(env, kv)
	}
	names := make([]string, 0, len(inv.Env))
	for name := range inv.Env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		env = append(env, name+"="+inv.Env[name])
	}
	return env
}
