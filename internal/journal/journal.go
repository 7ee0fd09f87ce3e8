// Package journal tracks compute runs: which model was processed, what was
// requested, how it ended. Implementations are keyed by run ID and must
// tolerate repeated Record calls as the run moves through its lifecycle.
package journal

import (
	"context"
	"encoding/json"
	"time"
)

// Status describes the lifecycle stage of a compute run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one journal entry.
type Run struct {
	ID          string          `json:"id"`
	ModelPath   string          `json:"model_path"`
	Operation   string          `json:"operation"` // validate|steady|transient
	Status      Status          `json:"status"`
	Error       string          `json:"error,omitempty"`
	Report      json.RawMessage `json:"report,omitempty"`
	Artifacts   []string        `json:"artifacts,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Journal records and retrieves compute runs.
type Journal interface {
	// Record upserts the run under its ID.
	Record(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (Run, bool, error)
	// List returns all runs ordered by creation time.
	List(ctx context.Context) ([]Run, error)
}
