// Package sqlite persists session state in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/session"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a session.Repository backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored state in one transaction.
func (s *Store) Save(ctx context.Context, st session.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.Save: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"transactions", "goals", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite.Save: clear %s: %w", table, err)
		}
	}

	for i, t := range st.Transactions {
		_, err := tx.ExecContext(ctx, `INSERT INTO transactions
			(transaction_id, position, description, amount, tx_date, tx_type, category)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, t.Description, t.Amount.String(), t.Date.String(), string(t.Type), t.Category,
		)
		if err != nil {
			return fmt.Errorf("sqlite.Save: insert transaction %s: %w", t.ID, err)
		}
	}

	for i, g := range st.Goals {
		completed := 0
		if g.IsCompleted {
			completed = 1
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO goals
			(goal_id, position, name, target_amount, is_completed, budget_plan, plan_status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, i, g.Name, g.TargetAmount.String(), completed, g.BudgetPlan, string(g.PlanStatus),
		)
		if err != nil {
			return fmt.Errorf("sqlite.Save: insert goal %s: %w", g.ID, err)
		}
	}

	for i, label := range st.Categories {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories (label, position) VALUES (?, ?)`, label, i); err != nil {
			return fmt.Errorf("sqlite.Save: insert category %q: %w", label, err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO session_state (id, points, updated_at) VALUES (1, ?, ?)`,
		st.Points, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite.Save: write points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Save: commit: %w", err)
	}
	return nil
}

// Load reads the stored state. A fresh database yields a zero State.
func (s *Store) Load(ctx context.Context) (session.State, error) {
	var st session.State
	var err error

	if st.Transactions, err = s.loadTransactions(ctx); err != nil {
		return session.State{}, fmt.Errorf("sqlite.Load: %w", err)
	}
	if st.Goals, err = s.loadGoals(ctx); err != nil {
		return session.State{}, fmt.Errorf("sqlite.Load: %w", err)
	}
	if st.Categories, err = s.loadCategories(ctx); err != nil {
		return session.State{}, fmt.Errorf("sqlite.Load: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT points FROM session_state WHERE id = 1").Scan(&st.Points)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return session.State{}, fmt.Errorf("sqlite.Load: read points: %w", err)
	}
	return st, nil
}

func (s *Store) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT transaction_id, description, amount, tx_date, tx_type, category
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var amount, date, typ string
		if err := rows.Scan(&t.ID, &t.Description, &amount, &date, &typ, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: parse amount: %w", t.ID, err)
		}
		if t.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.Type, err = domain.ParseTransactionType(typ); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) loadGoals(ctx context.Context) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT goal_id, name, target_amount, is_completed, budget_plan, plan_status
		FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Goal
	for rows.Next() {
		var g domain.Goal
		var target, status string
		var completed int
		if err := rows.Scan(&g.ID, &g.Name, &target, &completed, &g.BudgetPlan, &status); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("goal %s: parse target: %w", g.ID, err)
		}
		if g.PlanStatus, err = domain.ParsePlanStatus(status); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		g.IsCompleted = completed != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) loadCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT label FROM categories ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, label)
	}
	return out, rows.Err()
}

var _ session.Repository = (*Store)(nil)
