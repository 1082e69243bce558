package config

import (
	"path"
	"strings"
)

// NormalizePrefix turns the configured mirror prefix into the form keys are
// joined under: forward slashes, no empty or dot segments, no leading or
// trailing slash. A prefix that names nothing, or climbs above the bucket
// root, becomes "".
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	cleaned := path.Clean("/" + prefix)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}
