package domain

import (
	"errors"
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"4.50", "4.5", false},
		{"  1200 ", "1200", false},
		{"0", "0", false},
		{"", "", true},
		{"abc", "", true},
		{"-3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestAmountFromFloat(t *testing.T) {
	_, err := AmountFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AmountFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AmountFromFloat(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := AmountFromFloat(150.75)
	require.NoError(t, err)
	assert.Equal(t, "150.75", FormatAmount(got))
}

func TestTransactionDraft_Validate(t *testing.T) {
	valid := TransactionDraft{
		Description: "Coffee",
		Amount:      decimal.RequireFromString("4.50"),
		Date:        civil.Date{Year: 2024, Month: 1, Day: 5},
		Type:        TransactionTypeExpense,
		Category:    "Dining Out",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(d *TransactionDraft)
	}{
		{"empty description", func(d *TransactionDraft) { d.Description = "  " }},
		{"empty category", func(d *TransactionDraft) { d.Category = "" }},
		{"negative amount", func(d *TransactionDraft) { d.Amount = decimal.NewFromInt(-1) }},
		{"unknown type", func(d *TransactionDraft) { d.Type = "transfer" }},
		{"invalid date", func(d *TransactionDraft) { d.Date = civil.Date{Year: 2024, Month: 2, Day: 31} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.ErrorIs(t, d.Validate(), ErrInvalidInput)
		})
	}
}

func TestComputeSnapshot(t *testing.T) {
	txs := []Transaction{
		{Amount: decimal.RequireFromString("3500"), Type: TransactionTypeIncome},
		{Amount: decimal.RequireFromString("150.75"), Type: TransactionTypeExpense},
		{Amount: decimal.RequireFromString("65.50"), Type: TransactionTypeExpense},
	}
	s := ComputeSnapshot(txs)
	assert.Equal(t, "3500.00", FormatAmount(s.TotalIncome))
	assert.Equal(t, "216.25", FormatAmount(s.TotalExpenses))
	assert.Equal(t, "3283.75", FormatAmount(s.Balance))
	assert.True(t, s.Balance.Equal(s.TotalIncome.Sub(s.TotalExpenses)))

	empty := ComputeSnapshot(nil)
	assert.True(t, empty.Balance.IsZero())
}

func TestTransactionLine(t *testing.T) {
	tx := Transaction{
		Description: "Groceries",
		Amount:      decimal.RequireFromString("150.75"),
		Date:        civil.Date{Year: 2023, Month: 10, Day: 28},
		Type:        TransactionTypeExpense,
		Category:    "Groceries",
	}
	assert.Equal(t, "expense of $150.75 for Groceries (Groceries) on 2023-10-28", tx.Line())
}

func TestParsePlanStatus(t *testing.T) {
	s, err := ParsePlanStatus("")
	require.NoError(t, err)
	assert.Equal(t, PlanStatusIdle, s)

	s, err = ParsePlanStatus("generated")
	require.NoError(t, err)
	assert.Equal(t, PlanStatusGenerated, s)

	_, err = ParsePlanStatus("done")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
