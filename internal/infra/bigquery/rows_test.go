package bigquery

import (
	"math/big"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/session"
)

func TestDecimalRatConversion(t *testing.T) {
	tests := []string{"0", "4.5", "150.75", "1499.99", "0.000000001", "123456789.123456789"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			d := decimal.RequireFromString(in)
			back, err := decimalFromRat(ratFromDecimal(d))
			require.NoError(t, err)
			assert.True(t, d.Equal(back), "got %s", back)
		})
	}
}

func TestDecimalFromRat_Nil(t *testing.T) {
	_, err := decimalFromRat(nil)
	assert.Error(t, err)
}

func TestTransactionRowRoundTrip(t *testing.T) {
	tx := domain.Transaction{
		ID:          "t1",
		Description: "Groceries run",
		Amount:      decimal.RequireFromString("150.75"),
		Date:        civil.Date{Year: 2023, Month: 10, Day: 28},
		Type:        domain.TransactionTypeExpense,
		Category:    "Groceries",
	}

	row := newTransactionRow("snap", 3, tx)
	assert.Equal(t, "snap", row.SnapshotID)
	assert.Equal(t, int64(3), row.Position)
	assert.Equal(t, "expense", row.Direction)
	assert.Equal(t, 0, row.Amount.Cmp(big.NewRat(15075, 100)))

	got, err := row.toDomain()
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(got.Amount))
	got.Amount = tx.Amount
	assert.Equal(t, tx, got)
}

func TestTransactionRow_BadDirection(t *testing.T) {
	row := &TransactionRow{TransactionID: "t", Amount: big.NewRat(1, 1), Direction: "transfer"}
	_, err := row.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGoalRowRoundTrip(t *testing.T) {
	tests := []domain.Goal{
		{ID: "g1", Name: "Car", TargetAmount: decimal.NewFromInt(5000), PlanStatus: domain.PlanStatusIdle},
		{ID: "g2", Name: "Trip", TargetAmount: decimal.RequireFromString("899.5"), IsCompleted: true,
			BudgetPlan: "> Summary", PlanStatus: domain.PlanStatusGenerated},
	}
	for _, g := range tests {
		t.Run(g.Name, func(t *testing.T) {
			row := newGoalRow("snap", 0, g)
			assert.Equal(t, g.BudgetPlan != "", row.BudgetPlan.Valid)

			got, err := row.toDomain()
			require.NoError(t, err)
			assert.True(t, g.TargetAmount.Equal(got.TargetAmount))
			got.TargetAmount = g.TargetAmount
			assert.Equal(t, g, got)
		})
	}
}

func TestBuildRows(t *testing.T) {
	st := session.State{
		Transactions: []domain.Transaction{
			{ID: "t2", Amount: decimal.NewFromInt(1), Type: domain.TransactionTypeIncome},
			{ID: "t1", Amount: decimal.NewFromInt(2), Type: domain.TransactionTypeExpense},
		},
		Goals:      []domain.Goal{{ID: "g1", TargetAmount: decimal.NewFromInt(3)}},
		Categories: []string{"A", "B", "C"},
		Points:     35,
	}

	rows := buildRows("snap", st)
	require.Len(t, rows.transactions, 2)
	assert.Equal(t, "t2", rows.transactions[0].TransactionID)
	assert.Equal(t, int64(1), rows.transactions[1].Position)
	require.Len(t, rows.goals, 1)
	require.Len(t, rows.categories, 3)
	assert.Equal(t, "C", rows.categories[2].Name)
	for _, c := range rows.categories {
		assert.Equal(t, "snap", c.SnapshotID)
	}
}
