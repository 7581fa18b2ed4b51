package domain

import "github.com/shopspring/decimal"

// Snapshot is the derived financial summary of a ledger.
// It is recomputed from the full transaction list, never patched.
type Snapshot struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// ComputeSnapshot sums amounts grouped by type.
func ComputeSnapshot(txs []Transaction) Snapshot {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case TransactionTypeIncome:
			income = income.Add(t.Amount)
		case TransactionTypeExpense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return Snapshot{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
	}
}

// Default categories a new session starts with.
var DefaultCategories = []string{
	"Groceries",
	"Dining Out",
	"Transport",
	"Utilities",
	"Rent",
	"Entertainment",
	"Shopping",
	"Health",
	"Salary",
	"Freelance",
	"Other",
}
