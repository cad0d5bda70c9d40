package store

import (
	"context"
	"time"
)

// RunWriter defines persistence for completed benchmark runs.
type RunWriter interface {
	SaveRun(ctx context.Context, run *RunRecord) error
}

// RunReader defines read access to stored runs.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error)
}

// Store defines persistence for benchmark runs.
type Store interface {
	RunWriter
	RunReader
	Close() error
}

// RunRecord stores one benchmark run: a model evaluated against one
// run spec, with aggregate scores and per-instance detail.
type RunRecord struct {
	ID             string
	SpecName       string
	Provider       string
	Model          string
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalInstances int
	SuccessCount   int
	FailureCount   int
	CacheHits      int
	Scores         map[string]float64 // metric name -> mean score
	Results        []InstanceRecord   // JSON serialized
}

// InstanceRecord stores the outcome for a single eval instance.
type InstanceRecord struct {
	InstanceID  string             `json:"instance_id"`
	Completion  string             `json:"completion,omitempty"`
	Success     bool               `json:"success"`
	Cached      bool               `json:"cached"`
	Error       string             `json:"error,omitempty"`
	Scores      map[string]float64 `json:"scores,omitempty"`
	RequestTime float64            `json:"request_time,omitempty"`
}

// RunFilter filters run listings.
type RunFilter struct {
	SpecName string
	Model    string
	Since    time.Time
	Until    time.Time
	Limit    int
}
