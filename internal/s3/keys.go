package s3

import (
	"path"
	"strings"
)

const (
	ArchivesPrefix  = "archives"
	ManifestsPrefix = "manifests"
)

func ArchiveKey(repo, label string) string {
	return path.Join(ArchivesPrefix, repo, label+".zip")
}

func ManifestKey(repo, label string) string {
	return path.Join(ManifestsPrefix, repo, label+".json")
}

func ManifestsPrefixFor(repo string) string {
	return path.Join(ManifestsPrefix, repo) + "/"
}

func ArchivesPrefixFor(repo string) string {
	return path.Join(ArchivesPrefix, repo) + "/"
}

// ParseManifestKey splits "manifests/<repo>/<label>.json".
func ParseManifestKey(relativeKey string) (repo, label string, ok bool) {
	relativeKey = strings.Trim(relativeKey, "/")
	parts := strings.Split(relativeKey, "/")
	if len(parts) != 3 || parts[0] != ManifestsPrefix || parts[1] == "" {
		return "", "", false
	}
	label, found := strings.CutSuffix(parts[2], ".json")
	if !found || label == "" {
		return "", "", false
	}
	return parts[1], label, true
}
