// Package goals holds savings goals and applies the completion rule against
// ledger snapshots.
package goals

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is an in-memory goal store, newest goal first. It is safe for
// concurrent use and hands out copies.
type Store struct {
	mu    sync.RWMutex
	goals []*domain.Goal
	newID func() string
}

// NewStore creates an empty goal store.
func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

// AddGoal creates an idle, uncompleted goal without a plan.
func (s *Store) AddGoal(name string, target decimal.Decimal) (domain.Goal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Goal{}, fmt.Errorf("AddGoal: %w: name is required", domain.ErrInvalidInput)
	}
	if !target.IsPositive() {
		return domain.Goal{}, fmt.Errorf("AddGoal: %w: target amount must be positive, got %s", domain.ErrInvalidInput, target)
	}

	g := &domain.Goal{
		ID:           s.newID(),
		Name:         name,
		TargetAmount: target,
		PlanStatus:   domain.PlanStatusIdle,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = append([]*domain.Goal{g}, s.goals...)
	return *g, nil
}

// Get returns a copy of the goal with the given id.
func (s *Store) Get(id string) (domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.find(id)
	if g == nil {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return *g, nil
}

// List returns copies of all goals, newest first.
func (s *Store) List() []domain.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Goal, len(s.goals))
	for i, g := range s.goals {
		out[i] = *g
	}
	return out
}

// EvaluateCompletion flips every uncompleted goal whose target is covered by
// snapshot.Balance in a single pass and returns the goals that completed.
func (s *Store) EvaluateCompletion(snapshot domain.Snapshot) []domain.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed []domain.Goal
	for _, g := range s.goals {
		if g.IsCompleted {
			continue
		}
		if snapshot.Balance.GreaterThanOrEqual(g.TargetAmount) {
			g.IsCompleted = true
			completed = append(completed, *g)
		}
	}
	return completed
}

// UpdateGoal replaces the stored goal with the same id. A completed goal
// stays completed regardless of the incoming record.
func (s *Store) UpdateGoal(goal domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.find(goal.ID)
	if g == nil {
		return fmt.Errorf("UpdateGoal: goal %s: %w", goal.ID, domain.ErrNotFound)
	}
	wasCompleted := g.IsCompleted
	*g = goal
	if wasCompleted {
		g.IsCompleted = true
	}
	return nil
}

// Restore replaces all goals with persisted state, newest first.
func (s *Store) Restore(goals []domain.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = make([]*domain.Goal, len(goals))
	for i := range goals {
		g := goals[i]
		switch g.PlanStatus {
		case "":
			g.PlanStatus = domain.PlanStatusIdle
		case domain.PlanStatusGenerating:
			// No request survives a restart; its result is lost.
			g.PlanStatus = domain.PlanStatusError
		}
		s.goals[i] = &g
	}
}

func (s *Store) find(id string) *domain.Goal {
	for _, g := range s.goals {
		if g.ID == id {
			return g
		}
	}
	return nil
}
