package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/zenith/internal/domain"
)

// SnapshotRow marks one saved session state. Every other row carries the
// snapshot_id it belongs to.
type SnapshotRow struct {
	SnapshotID string    `bigquery:"snapshot_id"` // REQUIRED
	Points     int64     `bigquery:"points"`      // REQUIRED
	SavedTS    time.Time `bigquery:"saved_ts"`    // REQUIRED
}

type TransactionRow struct {
	SnapshotID    string `bigquery:"snapshot_id"`    // REQUIRED
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	Position      int64  `bigquery:"position"`       // REQUIRED, 0 = newest

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
	Direction       string     `bigquery:"direction"`        // REQUIRED income|expense

	Description  string `bigquery:"description"`   // REQUIRED
	CategoryName string `bigquery:"category_name"` // REQUIRED
}

type GoalRow struct {
	SnapshotID   string              `bigquery:"snapshot_id"`   // REQUIRED
	GoalID       string              `bigquery:"goal_id"`       // REQUIRED
	Position     int64               `bigquery:"position"`      // REQUIRED, 0 = newest
	Name         string              `bigquery:"name"`          // REQUIRED
	TargetAmount *big.Rat            `bigquery:"target_amount"` // REQUIRED NUMERIC
	IsCompleted  bool                `bigquery:"is_completed"`  // REQUIRED
	BudgetPlan   bigquery.NullString `bigquery:"budget_plan"`   // NULLABLE
	PlanStatus   string              `bigquery:"plan_status"`   // REQUIRED
}

type CategoryRow struct {
	SnapshotID string `bigquery:"snapshot_id"` // REQUIRED
	Name       string `bigquery:"name"`        // REQUIRED
	Position   int64  `bigquery:"position"`    // REQUIRED
}

// ratFromDecimal converts an amount to the NUMERIC representation.
func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

// decimalFromRat converts a NUMERIC value back. NUMERIC has nine fractional
// digits, so the conversion is exact.
func decimalFromRat(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Decimal{}, fmt.Errorf("decimalFromRat: NULL numeric")
	}
	return decimal.NewFromString(r.FloatString(9))
}

func newTransactionRow(snapshotID string, pos int, t domain.Transaction) *TransactionRow {
	return &TransactionRow{
		SnapshotID:      snapshotID,
		TransactionID:   t.ID,
		Position:        int64(pos),
		TransactionDate: t.Date,
		Amount:          ratFromDecimal(t.Amount),
		Direction:       string(t.Type),
		Description:     t.Description,
		CategoryName:    t.Category,
	}
}

func (r *TransactionRow) toDomain() (domain.Transaction, error) {
	amount, err := decimalFromRat(r.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
	}
	typ, err := domain.ParseTransactionType(r.Direction)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		Description: r.Description,
		Amount:      amount,
		Date:        r.TransactionDate,
		Type:        typ,
		Category:    r.CategoryName,
	}, nil
}

func newGoalRow(snapshotID string, pos int, g domain.Goal) *GoalRow {
	return &GoalRow{
		SnapshotID:   snapshotID,
		GoalID:       g.ID,
		Position:     int64(pos),
		Name:         g.Name,
		TargetAmount: ratFromDecimal(g.TargetAmount),
		IsCompleted:  g.IsCompleted,
		BudgetPlan:   bigquery.NullString{StringVal: g.BudgetPlan, Valid: g.BudgetPlan != ""},
		PlanStatus:   string(g.PlanStatus),
	}
}

func (r *GoalRow) toDomain() (domain.Goal, error) {
	target, err := decimalFromRat(r.TargetAmount)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", r.GoalID, err)
	}
	status, err := domain.ParsePlanStatus(r.PlanStatus)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", r.GoalID, err)
	}
	return domain.Goal{
		ID:           r.GoalID,
		Name:         r.Name,
		TargetAmount: target,
		IsCompleted:  r.IsCompleted,
		BudgetPlan:   r.BudgetPlan.StringVal,
		PlanStatus:   status,
	}, nil
}
