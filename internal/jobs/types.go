// Package jobs defines the asynchronous job model used to run budget plan
// requests off the caller's goroutine.
package jobs

import (
	"context"
	"time"
)

// JobKind represents the kind of plan request carried by a job.
type JobKind string

const (
	// JobKindCreatePlan asks for a first plan for a goal.
	JobKindCreatePlan JobKind = "create_plan"
	// JobKindUpdatePlan refreshes an existing plan.
	JobKindUpdatePlan JobKind = "update_plan"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// PlanJob is one budget plan request for one goal.
type PlanJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// GoalID is the goal whose plan is requested.
	GoalID string `json:"goal_id"`

	// Generation is the per-goal request number this job was issued under.
	Generation uint64 `json:"generation"`

	// Kind tells whether a prior plan is being refreshed.
	Kind JobKind `json:"kind"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed. Zero disables
	// retries.
	MaxRetries int `json:"max_retries"`
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishPlan enqueues a plan job.
	PublishPlan(ctx context.Context, job *PlanJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for queued and in-flight jobs to
	// complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the job failed and, if
// the job allows it, schedules a retry.
type JobHandler func(ctx context.Context, job *PlanJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *PlanJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*PlanJob, error)

	// ListJobs retrieves jobs with optional filtering, oldest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*PlanJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// GoalID filters jobs by goal ID.
	GoalID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
