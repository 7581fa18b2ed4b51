package domain

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType decides the sign of a transaction in aggregation.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionTypeIncome:
		return TransactionTypeIncome, nil
	case TransactionTypeExpense:
		return TransactionTypeExpense, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, s)
	}
}

// Transaction is one immutable ledger record.
// Amount is always non-negative; Type carries the direction.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        civil.Date      `json:"date"` // YYYY-MM-DD
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
}

// TransactionDraft is the user-supplied part of a Transaction; the ledger
// assigns the ID.
type TransactionDraft struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        civil.Date      `json:"date"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
}

// Validate reports ErrInvalidInput for empty required fields, a negative
// amount, an unknown type or an invalid date.
func (d TransactionDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidInput, d.Amount)
	}
	if d.Type != TransactionTypeIncome && d.Type != TransactionTypeExpense {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, d.Type)
	}
	if !d.Date.IsValid() {
		return fmt.Errorf("%w: invalid date %v", ErrInvalidInput, d.Date)
	}
	return nil
}

// Line renders the transaction the way plan prompts list recent activity.
func (t Transaction) Line() string {
	return fmt.Sprintf("%s of $%s for %s (%s) on %s",
		t.Type, t.Amount.String(), t.Description, t.Category, t.Date.String())
}
