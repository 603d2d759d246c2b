package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobAudit JobType = "audit"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued audit task
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	VideoURL    string          `json:"video_url"`
	Params      json.RawMessage `json:"params"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// AuditParams are parameters for an audit job
type AuditParams struct {
	VideoURL string `json:"video_url"`
	VideoID  string `json:"video_id"`
}

// AuditResult is the output of a finished audit job
type AuditResult struct {
	SessionID string `json:"session_id"` // key into the audits table
	Status    string `json:"status"`     // PASS or FAIL
	Report    string `json:"report"`
	Issues    int    `json:"issues"`
}

// JobHandler processes a job. The implementation is provided by the
// audit service.
type JobHandler func(ctx context.Context, job *Job) error
