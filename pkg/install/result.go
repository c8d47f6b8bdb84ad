package install

import (
	"fmt"

	"github.com/arthur-debert/dotlink/pkg/manifest"
)

// Outcome is how a single entry ended.
type Outcome int

const (
	// Success covers installs, entries already in place and every dry-run
	// preview.
	Success Outcome = iota
	// Failed entries make the whole run exit non-zero.
	Failed
	// Skipped entries were declined by the user. They are not failures.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is what happened to one manifest entry.
type Result struct {
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	Destination string  `json:"destination,omitempty"`
	Outcome     Outcome `json:"outcome"`
	Message     string  `json:"message"`

	// Err is set for failed entries.
	Err error `json:"-"`
}

// Plan is what a run is about to process.
type Plan struct {
	DryRun  bool
	Entries []manifest.Entry
	// Missing lists requested names the manifest does not contain.
	Missing []string
}

// Summary aggregates a run.
type Summary struct {
	DryRun    bool     `json:"dry_run"`
	Results   []Result `json:"results"`
	Missing   []string `json:"missing,omitempty"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case Success:
		s.Succeeded++
	case Failed:
		s.Failed++
	case Skipped:
		s.Skipped++
	}
}

// HasFailures reports whether any entry failed. Skips do not count.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// Observer follows a run as it happens, so that output can interleave
// with confirmation prompts.
type Observer interface {
	RunStarted(plan Plan)
	EntryStarted(entry manifest.Entry)
	EntryFinished(result Result)
	RunFinished(summary *Summary)
}

type nopObserver struct{}

func (nopObserver) RunStarted(Plan) {}
func (nopObserver) EntryStarted(manifest.Entry) {}
func (nopObserver) EntryFinished(Result) {}
func (nopObserver) RunFinished(*Summary) {}
