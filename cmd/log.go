package cmd

import (
	"io"
	"strings"

	"github.com/juju/loggo"

	"SvnBackuper/internal/config"
)

const rootModule = "svnbackuper"

// newLogContext returns a logging context writing to w at the given level.
// Package loggers hang off the "svnbackuper" module, e.g. svnbackuper.backup.
func newLogContext(w io.Writer, level string) *loggo.Context {
	lvl, ok := loggo.ParseLevel(strings.TrimSpace(level))
	if !ok || lvl == loggo.UNSPECIFIED {
		lvl, _ = loggo.ParseLevel(config.DefaultLogLevel)
	}
	ctx := loggo.NewContext(loggo.WARNING)
	_ = ctx.AddWriter("stderr", loggo.NewSimpleWriter(w, loggo.DefaultFormatter))
	ctx.GetLogger(rootModule).SetLogLevel(lvl)
	return ctx
}

func moduleLogger(ctx *loggo.Context, name string) loggo.Logger {
	return ctx.GetLogger(rootModule + "." + name)
}
