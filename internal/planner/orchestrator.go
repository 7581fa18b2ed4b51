// Package planner drives the per-goal budget plan state machine:
// idle -> generating -> generated | error, re-enterable from generated and
// error. Requests run on a job queue and commit through the goal store.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/jobs"
)

// Policy decides what happens to a request for a goal that is already
// generating.
type Policy string

const (
	// PolicyReject refuses the request with domain.ErrBusy.
	PolicyReject Policy = "reject"
	// PolicyLastIssuedWins accepts the request; only the most recently
	// issued request for the goal may commit.
	PolicyLastIssuedWins Policy = "last_issued_wins"
)

const (
	// DefaultTimeout bounds a single gateway call.
	DefaultTimeout = 60 * time.Second
	// DefaultRecentLimit is how many recent transactions a request carries.
	DefaultRecentLimit = 20
)

// ParsePolicy validates a policy name. An empty name selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyLastIssuedWins:
		return PolicyLastIssuedWins, nil
	default:
		return "", fmt.Errorf("ParsePolicy: %w: unknown policy %q", domain.ErrInvalidInput, s)
	}
}

// Config tunes the orchestrator. Zero values select the defaults.
type Config struct {
	Policy      Policy
	Timeout     time.Duration
	RecentLimit int
}

// GoalStore is the goal access the orchestrator needs.
type GoalStore interface {
	Get(id string) (domain.Goal, error)
	List() []domain.Goal
	UpdateGoal(goal domain.Goal) error
}

// LedgerView is the read-only ledger access used to build request context.
type LedgerView interface {
	Snapshot() domain.Snapshot
	Recent(n int) []domain.Transaction
}

// Queue runs plan jobs.
type Queue interface {
	jobs.Publisher
	jobs.Consumer
}

type goalState struct {
	mu       sync.Mutex
	issued   uint64
	inFlight int
}

// Orchestrator issues plan requests and commits their results.
type Orchestrator struct {
	gateway ai.Gateway
	goals   GoalStore
	ledger  LedgerView
	queue   Queue
	cfg     Config
	log     zerolog.Logger

	mu     sync.Mutex
	states map[string]*goalState
	tasks  map[string]*Task
}

// New creates an orchestrator. Call Start before issuing requests.
func New(gateway ai.Gateway, goals GoalStore, ledger LedgerView, queue Queue, cfg Config, log zerolog.Logger) *Orchestrator {
	if cfg.Policy == "" {
		cfg.Policy = PolicyReject
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	return &Orchestrator{
		gateway: gateway,
		goals:   goals,
		ledger:  ledger,
		queue:   queue,
		cfg:     cfg,
		log:     log.With().Str("component", "planner").Logger(),
		states:  make(map[string]*goalState),
		tasks:   make(map[string]*Task),
	}
}

// Start begins processing plan jobs. Gateway calls run under ctx, not under
// the context of the request that issued them.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.queue.Start(ctx, o.handle); err != nil {
		return fmt.Errorf("Orchestrator.Start: %w", err)
	}
	return nil
}

// Stop waits for issued requests to finish.
func (o *Orchestrator) Stop(ctx context.Context) error {
	if err := o.queue.Stop(ctx); err != nil {
		return fmt.Errorf("Orchestrator.Stop: %w", err)
	}
	return nil
}

func (o *Orchestrator) state(goalID string) *goalState {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.states[goalID]
	if !ok {
		st = &goalState{}
		o.states[goalID] = st
	}
	return st
}

// Request moves the goal to generating and enqueues a plan request built
// from the goal, the current balance and the most recent transactions. A goal
// with a plan gets an update request carrying the old plan text.
func (o *Orchestrator) Request(ctx context.Context, goalID string) (*Task, error) {
	if _, err := o.goals.Get(goalID); err != nil {
		return nil, fmt.Errorf("Request: %w", err)
	}

	st := o.state(goalID)
	st.mu.Lock()

	goal, err := o.goals.Get(goalID)
	if err != nil {
		st.mu.Unlock()
		return nil, fmt.Errorf("Request: %w", err)
	}
	if o.cfg.Policy == PolicyReject && st.inFlight > 0 {
		st.mu.Unlock()
		return nil, fmt.Errorf("Request: goal %s: %w: a plan is already being generated", goalID, domain.ErrBusy)
	}

	pc := ai.PlanContext{
		GoalName:     goal.Name,
		TargetAmount: goal.TargetAmount,
		Balance:      o.ledger.Snapshot().Balance,
		Recent:       o.ledger.Recent(o.cfg.RecentLimit),
	}
	kind := jobs.JobKindCreatePlan
	if goal.HasPlan() {
		kind = jobs.JobKindUpdatePlan
	}

	goal.PlanStatus = domain.PlanStatusGenerating
	if err := o.goals.UpdateGoal(goal); err != nil {
		st.mu.Unlock()
		return nil, fmt.Errorf("Request: set generating: %w", err)
	}

	st.issued++
	st.inFlight++
	task := newTask(goalID, uuid.NewString(), st.issued, kind, pc, goal.BudgetPlan)

	o.mu.Lock()
	o.tasks[task.JobID] = task
	o.mu.Unlock()
	st.mu.Unlock()

	logger := o.log.With().
		Str("goal_id", goalID).
		Str("job_id", task.JobID).
		Uint64("generation", task.Generation).
		Str("kind", string(kind)).
		Logger()
	logger.Info().Msg("Plan requested")

	job := &jobs.PlanJob{
		JobID:      task.JobID,
		GoalID:     goalID,
		Generation: task.Generation,
		Kind:       kind,
	}
	if err := o.queue.PublishPlan(ctx, job); err != nil {
		o.mu.Lock()
		delete(o.tasks, task.JobID)
		o.mu.Unlock()

		res := o.commit(task, "", fmt.Errorf("%w: enqueue plan job: %w", domain.ErrGatewayFailure, err))
		task.finish(res)
		logger.Error().Err(err).Msg("Failed to enqueue plan job")
		return nil, fmt.Errorf("Request: publish job: %w", err)
	}

	return task, nil
}

// RequestAll issues a request for every uncompleted goal and waits for all of
// them. Goals that are busy are skipped.
func (o *Orchestrator) RequestAll(ctx context.Context) ([]Result, error) {
	var tasks []*Task
	for _, g := range o.goals.List() {
		if g.IsCompleted {
			continue
		}
		task, err := o.Request(ctx, g.ID)
		if errors.Is(err, domain.ErrBusy) {
			o.log.Debug().Str("goal_id", g.ID).Msg("Skipping busy goal")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("RequestAll: %w", err)
		}
		tasks = append(tasks, task)
	}

	results := make([]Result, len(tasks))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		eg.Go(func() error {
			res, err := task.Wait(egCtx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("RequestAll: wait: %w", err)
	}
	return results, nil
}

func (o *Orchestrator) handle(ctx context.Context, job *jobs.PlanJob) error {
	o.mu.Lock()
	task, ok := o.tasks[job.JobID]
	delete(o.tasks, job.JobID)
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("handle: unknown plan job %s", job.JobID)
	}

	text, err := o.callGateway(ctx, task)
	res := o.commit(task, text, err)
	task.finish(res)

	if res.Outcome == OutcomeFailed {
		return res.Err
	}
	return nil
}

func (o *Orchestrator) callGateway(ctx context.Context, task *Task) (text string, err error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: gateway panicked: %v", domain.ErrGatewayFailure, r)
		}
	}()

	if task.Kind == jobs.JobKindUpdatePlan {
		text, err = o.gateway.UpdatePlan(callCtx, task.pc, task.prior)
	} else {
		text, err = o.gateway.GeneratePlan(callCtx, task.pc)
	}
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty plan text")
	}
	if err != nil && !errors.Is(err, domain.ErrGatewayFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrGatewayFailure, err)
	}
	return text, err
}

// commit applies a finished request to its goal unless a newer request for
// the goal has been issued since.
func (o *Orchestrator) commit(task *Task, text string, callErr error) Result {
	res := Result{GoalID: task.GoalID, JobID: task.JobID, Generation: task.Generation}
	logger := o.log.With().
		Str("goal_id", task.GoalID).
		Str("job_id", task.JobID).
		Uint64("generation", task.Generation).
		Logger()

	st := o.state(task.GoalID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.inFlight--
	if task.Generation != st.issued {
		res.Outcome = OutcomeDiscarded
		logger.Info().Uint64("latest_generation", st.issued).Msg("Discarding superseded plan result")
		return res
	}

	goal, err := o.goals.Get(task.GoalID)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("commit: %w", err)
		logger.Error().Err(err).Msg("Goal disappeared before plan commit")
		return res
	}

	if callErr != nil {
		goal.PlanStatus = domain.PlanStatusError
		res.Outcome = OutcomeFailed
		res.Err = callErr
	} else {
		goal.BudgetPlan = text
		goal.PlanStatus = domain.PlanStatusGenerated
		res.Outcome = OutcomeGenerated
		res.Plan = text
	}

	if err := o.goals.UpdateGoal(goal); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("commit: %w", err)
		res.Plan = ""
		logger.Error().Err(err).Msg("Failed to commit plan")
		return res
	}

	if res.Err != nil {
		logger.Warn().Err(res.Err).Msg("Plan generation failed")
	} else {
		logger.Info().Int("plan_length", len(text)).Msg("Plan generated")
	}
	return res
}
