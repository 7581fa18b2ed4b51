// Package ledger holds the transaction log and the category set and derives
// the financial snapshot from them.
package ledger

import (
	"fmt"
	"sync"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/google/uuid"
)

// Filter narrows Transactions. Zero values match everything.
type Filter struct {
	Type     domain.TransactionType
	Category string
}

// Ledger is an in-memory, newest-first transaction log. It is safe for
// concurrent use; reads return copies.
type Ledger struct {
	mu           sync.RWMutex
	transactions []domain.Transaction // newest first
	categories   *CategorySet
	newID        func() string
}

// New creates a ledger whose category set is seeded with seed.
func New(seed []string) *Ledger {
	return &Ledger{
		categories: NewCategorySet(seed),
		newID:      uuid.NewString,
	}
}

// AddTransaction validates the draft, assigns an id, prepends the record and
// registers its category. On error nothing is mutated.
func (l *Ledger) AddTransaction(draft domain.TransactionDraft) (domain.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: %w", err)
	}

	tx := domain.Transaction{
		ID:          l.newID(),
		Description: draft.Description,
		Amount:      draft.Amount,
		Date:        draft.Date,
		Type:        draft.Type,
		Category:    draft.Category,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = append([]domain.Transaction{tx}, l.transactions...)
	l.categories.Add(tx.Category)

	return tx, nil
}

// DeleteTransaction removes the transaction with the given id. It reports
// whether anything was removed; an unknown id is not an error.
func (l *Ledger) DeleteTransaction(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, tx := range l.transactions {
		if tx.ID == id {
			l.transactions = append(l.transactions[:i:i], l.transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot recomputes income, expenses and balance from the full log.
func (l *Ledger) Snapshot() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return domain.ComputeSnapshot(l.transactions)
}

// Recent returns up to n transactions, newest first.
func (l *Ledger) Recent(n int) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.transactions) {
		n = len(l.transactions)
	}
	if n <= 0 {
		return []domain.Transaction{}
	}
	out := make([]domain.Transaction, n)
	copy(out, l.transactions[:n])
	return out
}

// Transactions returns the transactions matching filter, newest first.
func (l *Ledger) Transactions(filter Filter) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Categories returns the category labels in insertion order.
func (l *Ledger) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.categories.List()
}

// Restore replaces the log and category set with persisted state.
// transactions must already be newest first.
func (l *Ledger) Restore(transactions []domain.Transaction, categories []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = append([]domain.Transaction(nil), transactions...)
	l.categories = NewCategorySet(categories)
	for _, tx := range l.transactions {
		l.categories.Add(tx.Category)
	}
}
