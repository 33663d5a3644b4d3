// Package report provides persistence and retrieval of execution
// records. Tool results are previewed inline; the full captured output
// of every run is kept here and retrieved by run ID.
package report

import "time"

// Run is the stored record of one supervised execution.
type Run struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	Argv      []string      `json:"argv"`
	Cwd       string        `json:"cwd,omitempty"`
	ExitCode  *int          `json:"exit_code"` // nil when the process never completed
	TimedOut  bool          `json:"timed_out"`
	Truncated bool          `json:"truncated"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Summary is the listing view of a run, without the captured output.
type Summary struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	ExitCode  *int          `json:"exit_code"`
	TimedOut  bool          `json:"timed_out"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Store persists and retrieves run records.
type Store interface {
	Save(run *Run) error
	Load(runID string) (*Run, error)
	Recent(n int) ([]Summary, error)
}
