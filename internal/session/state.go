package session

import (
	"context"
	"fmt"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/ledger"
	"github.com/dvloznov/zenith/internal/points"
)

// State is the persistable part of a session. Snapshots are derived and never
// stored.
type State struct {
	Transactions []domain.Transaction `json:"transactions"` // newest first
	Goals        []domain.Goal        `json:"goals"`        // newest first
	Categories   []string             `json:"categories"`   // insertion order
	Points       int64                `json:"points"`
}

// Repository persists session state.
type Repository interface {
	// Save replaces the stored state.
	Save(ctx context.Context, state State) error

	// Load returns the stored state. An empty store yields a zero State.
	Load(ctx context.Context) (State, error)
}

// Export returns a consistent copy of the session state.
func (s *Session) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Transactions: s.ledger.Transactions(ledger.Filter{}),
		Goals:        s.goals.List(),
		Categories:   s.ledger.Categories(),
		Points:       s.points.Total(),
	}
}

// Restore replaces the session state. Every record is validated first; on
// error nothing changes. An empty category list restores the defaults.
func (s *Session) Restore(st State) error {
	for _, tx := range st.Transactions {
		if tx.ID == "" {
			return fmt.Errorf("Restore: %w: transaction without id", domain.ErrInvalidInput)
		}
		d := domain.TransactionDraft{
			Description: tx.Description,
			Amount:      tx.Amount,
			Date:        tx.Date,
			Type:        tx.Type,
			Category:    tx.Category,
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("Restore: transaction %s: %w", tx.ID, err)
		}
	}
	for _, g := range st.Goals {
		if g.ID == "" || g.Name == "" || !g.TargetAmount.IsPositive() {
			return fmt.Errorf("Restore: %w: invalid goal %q", domain.ErrInvalidInput, g.ID)
		}
	}
	if st.Points < 0 {
		return fmt.Errorf("Restore: %w: negative points %d", domain.ErrInvalidInput, st.Points)
	}

	categories := st.Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategories
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Restore(st.Transactions, categories)
	s.goals.Restore(st.Goals)
	s.points = points.NewCounter(st.Points)

	s.log.Info().
		Int("transactions", len(st.Transactions)).
		Int("goals", len(st.Goals)).
		Int64("points", st.Points).
		Msg("Session restored")
	return nil
}

// Save writes the current state to repo.
func (s *Session) Save(ctx context.Context, repo Repository) error {
	if err := repo.Save(ctx, s.Export()); err != nil {
		return fmt.Errorf("Session.Save: %w", err)
	}
	return nil
}

// Load replaces the session state with what repo holds.
func (s *Session) Load(ctx context.Context, repo Repository) error {
	st, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("Session.Load: %w", err)
	}
	if err := s.Restore(st); err != nil {
		return fmt.Errorf("Session.Load: %w", err)
	}
	return nil
}
