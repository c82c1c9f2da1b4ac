package entity

import "time"

type FillReport struct {
	Attempted int `json:"attempted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (r FillReport) Total() int {
	return r.Attempted + r.Skipped + r.Failed
}

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

type RunResult struct {
	RunID      string        `json:"runId"`
	URL        string        `json:"url"`
	Site       string        `json:"site"`
	Status     RunStatus     `json:"status"`
	Report     FillReport    `json:"report"`
	Degraded   bool          `json:"degraded"`
	Submitted  bool          `json:"submitted"`
	Screenshot string        `json:"screenshot,omitempty"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}
