package svn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var revisionRe = regexp.MustCompile(`\b\d+`)

// ParseRevision returns the first number that starts a word in out, so
// "r42" or "E000002" do not count. ok is false when there is none, which
// callers read as "not a repository".
func ParseRevision(out string) (rev int, ok bool) {
	m := revisionRe.FindString(out)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Label is the backup record name for a revision: "v" and seven or more
// zero padded digits.
func Label(rev int) string {
	return fmt.Sprintf("v%07d", rev)
}

// ParseLabel is the inverse of Label. Names that Label could not have
// produced are rejected.
func ParseLabel(name string) (int, bool) {
	digits, found := strings.CutPrefix(name, "v")
	if !found || len(digits) < 7 {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if len(digits) > 7 && digits[0] == '0' {
		return 0, false
	}
	return n, true
}
