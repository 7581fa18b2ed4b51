package planner

import (
	"context"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/jobs"
)

// Outcome is how a plan request ended.
type Outcome string

const (
	// OutcomeGenerated means the plan text was committed to the goal.
	OutcomeGenerated Outcome = "generated"
	// OutcomeFailed means the goal moved to the error status and kept its
	// previous plan.
	OutcomeFailed Outcome = "failed"
	// OutcomeDiscarded means a newer request for the same goal was issued
	// before this one returned, so its result was dropped.
	OutcomeDiscarded Outcome = "discarded"
)

// Result describes a finished plan request.
type Result struct {
	GoalID     string  `json:"goal_id"`
	JobID      string  `json:"job_id"`
	Generation uint64  `json:"generation"`
	Outcome    Outcome `json:"outcome"`
	Plan       string  `json:"plan,omitempty"`
	Err        error   `json:"-"`
}

// Task is a handle on an issued plan request.
type Task struct {
	GoalID     string
	JobID      string
	Generation uint64
	Kind       jobs.JobKind

	pc    ai.PlanContext
	prior string

	done   chan struct{}
	result Result
}

func newTask(goalID, jobID string, gen uint64, kind jobs.JobKind, pc ai.PlanContext, prior string) *Task {
	return &Task{
		GoalID:     goalID,
		JobID:      jobID,
		Generation: gen,
		Kind:       kind,
		pc:         pc,
		prior:      prior,
		done:       make(chan struct{}),
	}
}

// Done is closed once the request has been committed, failed or discarded.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the request finishes or ctx ends. Only a ctx error is
// returned here; the request's own failure is in Result.Err.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome if the request has finished.
func (t *Task) Result() (Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{}, false
	}
}

func (t *Task) finish(r Result) {
	t.result = r
	close(t.done)
}
