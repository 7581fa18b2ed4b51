package ai

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n[1,2]\n```", want: `[1,2]`},
		{name: "chatter around object", in: "Here you go: {\"a\":1} hope that helps", want: `{"a":1}`},
		{name: "array before object", in: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "no json", in: "nothing here", want: "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}

func TestDecodeReceipt_PartialFields(t *testing.T) {
	r, err := decodeReceipt(`{"merchant":"  Shop  ","total":0,"date":"yesterday"}`)
	require.NoError(t, err)
	assert.Equal(t, "Shop", r.Merchant)
	assert.Nil(t, r.Total)
	assert.Nil(t, r.Date)

	r, err = decodeReceipt(`{"total":9.99,"date":"2023-10-28"}`)
	require.NoError(t, err)
	assert.Empty(t, r.Merchant)
	require.NotNil(t, r.Total)
	assert.True(t, r.Total.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, civil.Date{Year: 2023, Month: 10, Day: 28}, *r.Date)
}

func TestDecodeGoalSuggestions_Invalid(t *testing.T) {
	_, err := decodeGoalSuggestions("not json")
	assert.Error(t, err)

	got, err := decodeGoalSuggestions("[]")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchCategory(t *testing.T) {
	known := []string{"Groceries", "Dining Out", "Transport"}
	tests := []struct {
		in   string
		want string
	}{
		{in: "Groceries", want: "Groceries"},
		{in: "  dining out ", want: "Dining Out"},
		{in: "\"TRANSPORT\"", want: "Transport"},
		{in: "Pets", want: "Pets"},
		{in: "Pets\nBecause the description mentions a dog.", want: "Pets"},
		{in: "  ", want: ""},
		{in: "**", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchCategory(tt.in, known))
		})
	}
}

func TestBuildCreatePlanPrompt(t *testing.T) {
	pc := PlanContext{
		GoalName:     "Emergency Fund",
		TargetAmount: decimal.NewFromInt(2000),
		Balance:      decimal.RequireFromString("-4.5"),
		Recent: []domain.Transaction{{
			Description: "Coffee",
			Amount:      decimal.RequireFromString("4.50"),
			Date:        civil.Date{Year: 2024, Month: 1, Day: 2},
			Type:        domain.TransactionTypeExpense,
			Category:    "Dining Out",
		}},
	}

	p := buildCreatePlanPrompt(pc)
	assert.Contains(t, p, `"Emergency Fund"`)
	assert.Contains(t, p, "$2000.00")
	assert.Contains(t, p, "$-4.50")
	assert.Contains(t, p, "1 most recent transactions")
	assert.Contains(t, p, pc.Recent[0].Line())
	assert.Contains(t, p, "Summary")
	assert.NotContains(t, p, "previous plan")
}

func TestBuildUpdatePlanPrompt_EmptyHistory(t *testing.T) {
	p := buildUpdatePlanPrompt(PlanContext{GoalName: "Car"}, "old")
	assert.Contains(t, p, "(no transactions recorded yet)")
	assert.True(t, strings.Contains(p, "**previous plan**"))
}
