package ledger

import "time"

// Status is the terminal state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID           string
	Status       Status
	VideoDir     string
	AudioDir     string
	OutputDir    string
	FinalPath    string
	Segments     int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	Items        []Item
}

// Elapsed returns the wall-clock duration of the run.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Item is the outcome of one clip or narration within a stage.
type Item struct {
	Stage      string
	Name       string
	Status     string
	OutputPath string
	Detail     string
}
