package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Label is the per-file result of a labeling run. Rainy is nil when the file
// could not be processed; Err then holds the cause.
type Label struct {
	Filename       string
	Rainy          *bool
	Classification Classification
	Err            error
}

// NewLabel returns a known label for a classified file.
func NewLabel(filename string, c Classification) Label {
	rainy := c.Rainy
	return Label{Filename: filename, Rainy: &rainy, Classification: c}
}

// UnknownLabel returns a label for a file that failed to load or classify.
func UnknownLabel(filename string, err error) Label {
	return Label{Filename: filename, Err: err}
}

// Known reports whether the label carries a classification outcome.
func (l Label) Known() bool {
	return l.Rainy != nil
}

// Outcome names the label state: "rainy", "dry" or "unknown".
func (l Label) Outcome() string {
	switch {
	case l.Rainy == nil:
		return "unknown"
	case *l.Rainy:
		return "rainy"
	default:
		return "dry"
	}
}

// Report is the ordered set of labels produced by one run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Labels      []Label
}

// NewReport assigns a run ID and timestamp and sorts labels by filename.
func NewReport(labels []Label) Report {
	sorted := make([]Label, len(labels))
	copy(sorted, labels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Filename < sorted[j].Filename
	})
	return Report{
		RunID:       uuid.NewString(),
		GeneratedAt: clock.Now().UTC(),
		Labels:      sorted,
	}
}

// Counts returns the number of rainy, dry and unknown labels.
func (r Report) Counts() (rainy, dry, unknown int) {
	for _, l := range r.Labels {
		switch l.Outcome() {
		case "rainy":
			rainy++
		case "dry":
			dry++
		default:
			unknown++
		}
	}
	return rainy, dry, unknown
}
