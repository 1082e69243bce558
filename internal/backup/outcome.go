package backup

import (
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	BackedUp Kind = iota
	UpToDate
	NotRepository
	Failed
)

func (k Kind) String() string {
	switch k {
	case BackedUp:
		return "backed up"
	case UpToDate:
		return "up to date"
	case NotRepository:
		return "not a repository"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is what happened to one repository during a run. Label is empty
// when the revision probe did not succeed.
type Outcome struct {
	Repository string
	Path       string
	Kind       Kind
	Revision   int
	Label      string
	Compressed bool
	Size       int64
	Pruned     []string
	Mirrored   bool
	Warnings   []string
	Err        error
	Duration   time.Duration
}

type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

func (r *Report) Count(k Kind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return r.Count(Failed)
}

// Summary renders the per-kind counts, for example
// "3 repositories: 1 backed up, 1 up to date, 1 not a repository, 0 failed".
func (r *Report) Summary() string {
	noun := "repositories"
	if len(r.Outcomes) == 1 {
		noun = "repository"
	}
	parts := make([]string, 0, 4)
	for _, k := range []Kind{BackedUp, UpToDate, NotRepository, Failed} {
		parts = append(parts, fmt.Sprintf("%d %s", r.Count(k), k))
	}
	return fmt.Sprintf("%d %s: %s", len(r.Outcomes), noun, strings.Join(parts, ", "))
}
