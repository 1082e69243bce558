package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/loggo"

	"SvnBackuper/internal/s3"
	"SvnBackuper/internal/svn"
)

// Mirror copies compressed records to object storage and applies the same
// count-based retention there.
type Mirror struct {
	Storage  Storage
	History  int
	PartSize int64
	Logger   loggo.Logger
	Host     string
	Now      func() time.Time
}

func (m *Mirror) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Push uploads zipPath as the record label of repo. It reports false when the
// remote manifest already carries the same digest.
func (m *Mirror) Push(ctx context.Context, repo, label, zipPath, runID string) (bool, error) {
	rev, ok := svn.ParseLabel(label)
	if !ok {
		return false, fmt.Errorf("push %s: %q is not a record label", repo, label)
	}
	digest, size, err := Digest(zipPath)
	if err != nil {
		return false, err
	}

	existing, err := ReadManifest(ctx, m.Storage, repo, label)
	switch {
	case err == nil && existing.Digest == digest:
		if _, herr := m.Storage.HeadObject(ctx, existing.Key); herr == nil {
			m.Logger.Debugf("%s %s already mirrored", repo, label)
			return false, nil
		}
	case err != nil && !errors.Is(err, s3.ErrNotFound):
		return false, fmt.Errorf("read manifest %s/%s: %w", repo, label, err)
	}

	f, err := os.Open(zipPath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	key := s3.ArchiveKey(repo, label)
	start := m.now()
	if err := m.Storage.Upload(ctx, key, f, m.PartSize); err != nil {
		return false, fmt.Errorf("upload %s: %w", key, err)
	}
	manifest := Manifest{
		Repository: repo,
		Label:      label,
		Revision:   rev,
		Key:        key,
		Size:       size,
		Digest:     digest,
		Host:       m.Host,
		RunID:      runID,
		Created:    m.now().UTC(),
	}
	if err := WriteManifest(ctx, m.Storage, manifest); err != nil {
		return false, fmt.Errorf("write manifest %s/%s: %w", repo, label, err)
	}
	m.Logger.Infof("mirrored %s %s (%s) in %s", repo, label, humanize.Bytes(uint64(size)), m.now().Sub(start).Round(time.Millisecond))
	return true, nil
}

// Prune keeps the newest History mirrored records of repo and deletes the
// rest, archive first. History below 1 disables pruning.
func (m *Mirror) Prune(ctx context.Context, repo string) ([]string, error) {
	if m.History < 1 {
		return nil, nil
	}
	labels, err := ListManifests(ctx, m.Storage, repo)
	if err != nil {
		return nil, err
	}
	if len(labels) <= m.History {
		return nil, nil
	}
	var deleted []string
	for _, label := range labels[:len(labels)-m.History] {
		key := s3.ArchiveKey(repo, label)
		if mf, err := ReadManifest(ctx, m.Storage, repo, label); err == nil && mf.Key != "" {
			key = mf.Key
		}
		if err := m.Storage.DeleteObject(ctx, key); err != nil {
			return deleted, err
		}
		if err := m.Storage.DeleteObject(ctx, s3.ManifestKey(repo, label)); err != nil {
			return deleted, err
		}
		m.Logger.Infof("removed mirrored %s %s", repo, label)
		deleted = append(deleted, label)
	}
	return deleted, nil
}

// Fetch downloads the record label of repo into dst and verifies its digest.
// dst is removed when verification fails.
func (m *Mirror) Fetch(ctx context.Context, repo, label, dst string) (*Manifest, error) {
	mf, err := ReadManifest(ctx, m.Storage, repo, label)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s/%s: %w", repo, label, err)
	}
	rc, err := m.Storage.GetObject(ctx, mf.Key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return nil, fmt.Errorf("download %s: %w", mf.Key, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	digest, size, err := Digest(dst)
	if err != nil {
		return nil, err
	}
	if digest != mf.Digest || size != mf.Size {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("download %s: digest mismatch", mf.Key)
	}
	return mf, nil
}

// List returns the manifests of repo, oldest first.
func (m *Mirror) List(ctx context.Context, repo string) ([]Manifest, error) {
	labels, err := ListManifests(ctx, m.Storage, repo)
	if err != nil {
		return nil, err
	}
	out := make([]Manifest, 0, len(labels))
	for _, label := range labels {
		mf, err := ReadManifest(ctx, m.Storage, repo, label)
		if err != nil {
			return nil, err
		}
		out = append(out, *mf)
	}
	return out, nil
}
