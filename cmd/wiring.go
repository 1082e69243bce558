package cmd

import (
	"context"
	"os"

	"github.com/juju/loggo"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/config"
	"SvnBackuper/internal/process"
	"SvnBackuper/internal/s3"
	"SvnBackuper/internal/svn"
)

func newTools(cfg *config.Config, logs *loggo.Context) *svn.Tools {
	return &svn.Tools{
		Runner:  process.NewExecRunner(moduleLogger(logs, "process")),
		Dir:     cfg.SvnPath,
		Timeout: cfg.TimeoutDuration(),
		Logger:  moduleLogger(logs, "svn"),
	}
}

func newMirror(ctx context.Context, cfg *config.Config, logs *loggo.Context) (*archive.Mirror, error) {
	client, err := s3.New(ctx, cfg.S3.ClientOptions())
	if err != nil {
		return nil, err
	}
	return &archive.Mirror{
		Storage:  client,
		History:  cfg.MirrorHistory(),
		PartSize: cfg.S3.PartSizeBytes(),
		Logger:   moduleLogger(logs, "archive"),
		Host:     hostname(),
	}, nil
}

func hostname() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "localhost"
	}
	return host
}
