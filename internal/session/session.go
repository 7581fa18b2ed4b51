// Package session owns one user's ledger, goals, points and plan
// orchestrator, and sequences every mutation through the completion rule and
// the points counter.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/goals"
	"github.com/dvloznov/zenith/internal/jobs"
	"github.com/dvloznov/zenith/internal/jobs/inmemory"
	"github.com/dvloznov/zenith/internal/ledger"
	"github.com/dvloznov/zenith/internal/planner"
	"github.com/dvloznov/zenith/internal/points"
)

// DefaultQueueSize is the plan job buffer used when none is configured.
const DefaultQueueSize = 64

// Options configures a Session.
type Options struct {
	// Gateway is the AI collaborator. Nil disables AI features; they then
	// fail with domain.ErrGatewayFailure.
	Gateway ai.Gateway

	Planner   planner.Config
	Workers   int
	QueueSize int

	Logger zerolog.Logger

	// Today returns the current date for receipt prefill. Defaults to the
	// local calendar date.
	Today func() civil.Date
}

// Change reports the side effects of a mutation.
type Change struct {
	PointsAwarded  int64         `json:"points_awarded"`
	CompletedGoals []domain.Goal `json:"completed_goals,omitempty"`
	Points         int64         `json:"points"`
}

// Session is the explicit, session-scoped application state.
type Session struct {
	// mu serializes mutate -> snapshot -> completion -> points sequences.
	mu sync.Mutex

	ledger  *ledger.Ledger
	goals   *goals.Store
	points  *points.Counter
	jobs    *inmemory.Store
	planner *planner.Orchestrator
	gateway ai.Gateway
	today   func() civil.Date
	log     zerolog.Logger
}

// New creates a session seeded with the default categories. Call Start
// before requesting plans.
func New(opts Options) *Session {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	today := opts.Today
	if today == nil {
		today = func() civil.Date { return civil.DateOf(time.Now()) }
	}
	gateway := opts.Gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}

	s := &Session{
		ledger:  ledger.New(domain.DefaultCategories),
		goals:   goals.NewStore(),
		points:  points.NewCounter(0),
		jobs:    inmemory.NewStore(),
		gateway: gateway,
		today:   today,
		log:     opts.Logger.With().Str("component", "session").Logger(),
	}
	queue := inmemory.NewQueue(queueSize, opts.Workers, s.jobs)
	s.planner = planner.New(gateway, s.goals, s.ledger, queue, opts.Planner, opts.Logger)
	return s
}

// Start starts the plan workers.
func (s *Session) Start(ctx context.Context) error {
	return s.planner.Start(ctx)
}

// Stop waits for in-flight plan requests.
func (s *Session) Stop(ctx context.Context) error {
	return s.planner.Stop(ctx)
}

// evaluateLocked applies the completion rule to the current snapshot and
// awards points for every goal it completed. Callers hold s.mu.
func (s *Session) evaluateLocked(change *Change) {
	completed := s.goals.EvaluateCompletion(s.ledger.Snapshot())
	if len(completed) > 0 {
		change.PointsAwarded += points.ForCompletingGoal * int64(len(completed))
		s.points.GoalsCompleted(len(completed))
		change.CompletedGoals = completed

		for _, g := range completed {
			s.log.Info().Str("goal_id", g.ID).Str("goal", g.Name).Msg("Goal completed")
		}
	}
	change.Points = s.points.Total()
}

// AddTransaction records a transaction, awards its points and completes any
// goal the new balance covers.
func (s *Session) AddTransaction(draft domain.TransactionDraft) (domain.Transaction, Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ledger.AddTransaction(draft)
	if err != nil {
		return domain.Transaction{}, Change{}, fmt.Errorf("AddTransaction: %w", err)
	}
	s.points.TransactionAdded()
	change := Change{PointsAwarded: points.ForTransaction}
	s.evaluateLocked(&change)

	s.log.Debug().
		Str("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Int64("points", change.Points).
		Msg("Transaction added")
	return tx, change, nil
}

// DeleteTransaction removes a transaction if present. Removing an expense can
// raise the balance, so the completion rule runs again.
func (s *Session) DeleteTransaction(id string) (bool, Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.ledger.DeleteTransaction(id)
	var change Change
	if removed {
		s.evaluateLocked(&change)
		s.log.Debug().Str("transaction_id", id).Msg("Transaction deleted")
	} else {
		change.Points = s.points.Total()
	}
	return removed, change
}

// AddGoal creates a goal, awards its points and completes it at once if the
// current balance already covers it.
func (s *Session) AddGoal(name string, target decimal.Decimal) (domain.Goal, Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.goals.AddGoal(name, target)
	if err != nil {
		return domain.Goal{}, Change{}, fmt.Errorf("AddGoal: %w", err)
	}
	s.points.GoalAdded()
	change := Change{PointsAwarded: points.ForNewGoal}
	s.evaluateLocked(&change)

	if got, err := s.goals.Get(g.ID); err == nil {
		g = got
	}
	s.log.Debug().Str("goal_id", g.ID).Str("goal", g.Name).Msg("Goal added")
	return g, change, nil
}

// AcceptSuggestion adds a suggested goal.
func (s *Session) AcceptSuggestion(sg domain.GoalSuggestion) (domain.Goal, Change, error) {
	return s.AddGoal(sg.Name, sg.TargetAmount)
}

// Snapshot returns the current derived totals.
func (s *Session) Snapshot() domain.Snapshot {
	return s.ledger.Snapshot()
}

// Transactions lists transactions newest first.
func (s *Session) Transactions(filter ledger.Filter) []domain.Transaction {
	return s.ledger.Transactions(filter)
}

// Categories lists the known categories in insertion order.
func (s *Session) Categories() []string {
	return s.ledger.Categories()
}

// Goals lists goals newest first.
func (s *Session) Goals() []domain.Goal {
	return s.goals.List()
}

// Goal returns one goal.
func (s *Session) Goal(id string) (domain.Goal, error) {
	return s.goals.Get(id)
}

// Points returns the running points total.
func (s *Session) Points() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points.Total()
}

// RequestPlan starts a plan request for a goal.
func (s *Session) RequestPlan(ctx context.Context, goalID string) (*planner.Task, error) {
	return s.planner.Request(ctx, goalID)
}

// RequestAllPlans requests plans for every uncompleted goal and waits.
func (s *Session) RequestAllPlans(ctx context.Context) ([]planner.Result, error) {
	return s.planner.RequestAll(ctx)
}

// Job returns a plan job by id.
func (s *Session) Job(ctx context.Context, id string) (*jobs.PlanJob, error) {
	return s.jobs.GetJob(ctx, id)
}

// Jobs lists plan jobs.
func (s *Session) Jobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.PlanJob, error) {
	return s.jobs.ListJobs(ctx, filter)
}

// SuggestCategory asks the gateway for a category for description. An empty
// result means there is no suggestion.
func (s *Session) SuggestCategory(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("SuggestCategory: %w: description is required", domain.ErrInvalidInput)
	}
	known := s.ledger.Categories()
	label, err := s.gateway.SuggestCategory(ctx, description, known)
	if err != nil {
		return "", fmt.Errorf("SuggestCategory: %w", err)
	}
	return ai.MatchCategory(label, known), nil
}

// ScanReceipt extracts a receipt and returns a prefilled expense draft. The
// draft is not recorded; category is left for the user.
func (s *Session) ScanReceipt(ctx context.Context, image ai.ReceiptImage) (domain.TransactionDraft, error) {
	r, err := s.gateway.ExtractReceipt(ctx, image)
	if err != nil {
		return domain.TransactionDraft{}, fmt.Errorf("ScanReceipt: %w", err)
	}
	if r.Total == nil {
		return domain.TransactionDraft{}, fmt.Errorf("ScanReceipt: %w: receipt total not found", domain.ErrGatewayFailure)
	}

	draft := domain.TransactionDraft{
		Description: r.Merchant,
		Amount:      *r.Total,
		Type:        domain.TransactionTypeExpense,
	}
	if draft.Description == "" {
		draft.Description = "Scanned Receipt"
	}
	if r.Date != nil {
		draft.Date = *r.Date
	} else {
		draft.Date = s.today()
	}
	return draft, nil
}

// SuggestGoals asks the gateway for goal ideas based on the current snapshot.
func (s *Session) SuggestGoals(ctx context.Context) ([]domain.GoalSuggestion, error) {
	out, err := s.gateway.SuggestGoals(ctx, s.ledger.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("SuggestGoals: %w", err)
	}
	if out == nil {
		out = []domain.GoalSuggestion{}
	}
	return out, nil
}

// AnalyzeScenario asks the gateway how a "what if" scenario affects the
// current finances and goals.
func (s *Session) AnalyzeScenario(ctx context.Context, scenario string) (string, error) {
	if strings.TrimSpace(scenario) == "" {
		return "", fmt.Errorf("AnalyzeScenario: %w: scenario is required", domain.ErrInvalidInput)
	}
	text, err := s.gateway.AnalyzeScenario(ctx, scenario, s.ledger.Snapshot(), s.goals.List())
	if err != nil {
		return "", fmt.Errorf("AnalyzeScenario: %w", err)
	}
	return text, nil
}
