package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"SvnBackuper/internal/s3"
	"SvnBackuper/internal/svn"
)

type Manifest struct {
	Repository string    `json:"repository"`
	Label      string    `json:"label"`
	Revision   int       `json:"revision"`
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
	Host       string    `json:"host"`
	RunID      string    `json:"run_id,omitempty"`
	Created    time.Time `json:"created"`
}

func WriteManifest(ctx context.Context, client Storage, m Manifest) error {
	key := s3.ManifestKey(m.Repository, m.Label)
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest marshal: %w", err)
	}
	return client.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)))
}

func ReadManifest(ctx context.Context, client Storage, repo, label string) (*Manifest, error) {
	rc, err := client.GetObject(ctx, s3.ManifestKey(repo, label))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest decode: %w", err)
	}
	return &m, nil
}

// ListManifests returns the labels that have a manifest for repo, oldest
// revision first. Keys that are not label-shaped are ignored.
func ListManifests(ctx context.Context, client Storage, repo string) ([]string, error) {
	keys, err := client.ListObjects(ctx, s3.ManifestsPrefixFor(repo), 0)
	if err != nil {
		return nil, err
	}
	type entry struct {
		label string
		rev   int
	}
	var entries []entry
	for _, k := range keys {
		r, label, ok := s3.ParseManifestKey(k)
		if !ok || r != repo {
			continue
		}
		rev, ok := svn.ParseLabel(label)
		if !ok {
			continue
		}
		entries = append(entries, entry{label, rev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rev < entries[j].rev })
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.label
	}
	return labels, nil
}

// Repositories returns the repository names that have at least one manifest.
func Repositories(ctx context.Context, client Storage) ([]string, error) {
	keys, err := client.ListObjects(ctx, s3.ManifestsPrefix, 0)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var repos []string
	for _, k := range keys {
		repo, _, ok := s3.ParseManifestKey(k)
		if !ok {
			continue
		}
		if _, dup := seen[repo]; dup {
			continue
		}
		seen[repo] = struct{}{}
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos, nil
}
