package goals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
)

func balance(s string) domain.Snapshot {
	b := decimal.RequireFromString(s)
	return domain.Snapshot{TotalIncome: b, TotalExpenses: decimal.Zero, Balance: b}
}

func TestAddGoal(t *testing.T) {
	s := NewStore()

	g, err := s.AddGoal("New Laptop", decimal.NewFromInt(1500))
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.False(t, g.IsCompleted)
	assert.Equal(t, domain.PlanStatusIdle, g.PlanStatus)
	assert.False(t, g.HasPlan())

	tests := []struct {
		name   string
		goal   string
		target decimal.Decimal
	}{
		{"empty name", " ", decimal.NewFromInt(10)},
		{"zero target", "Trip", decimal.Zero},
		{"negative target", "Trip", decimal.NewFromInt(-5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddGoal(tt.goal, tt.target)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Len(t, s.List(), 1)
}

func TestList_NewestFirst(t *testing.T) {
	s := NewStore()
	a, _ := s.AddGoal("A", decimal.NewFromInt(1))
	b, _ := s.AddGoal("B", decimal.NewFromInt(2))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestEvaluateCompletion_Simultaneous(t *testing.T) {
	s := NewStore()
	for _, target := range []int64{100, 200, 300, 400} {
		_, err := s.AddGoal("goal", decimal.NewFromInt(target))
		require.NoError(t, err)
	}

	assert.Empty(t, s.EvaluateCompletion(balance("0")))

	completed := s.EvaluateCompletion(balance("350"))
	assert.Len(t, completed, 3)

	// Already completed goals are not reported again.
	assert.Empty(t, s.EvaluateCompletion(balance("350")))

	completed = s.EvaluateCompletion(balance("400"))
	require.Len(t, completed, 1)
	assert.True(t, completed[0].TargetAmount.Equal(decimal.NewFromInt(400)))
}

func TestEvaluateCompletion_Monotonic(t *testing.T) {
	s := NewStore()
	g, _ := s.AddGoal("Emergency Fund", decimal.NewFromInt(500))

	s.EvaluateCompletion(balance("500"))
	s.EvaluateCompletion(balance("-100"))

	got, err := s.Get(g.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
}

func TestUpdateGoal(t *testing.T) {
	s := NewStore()
	g, _ := s.AddGoal("Vacation", decimal.NewFromInt(2000))

	g.BudgetPlan = "> Save 200 a month."
	g.PlanStatus = domain.PlanStatusGenerated
	require.NoError(t, s.UpdateGoal(g))

	got, err := s.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, "> Save 200 a month.", got.BudgetPlan)
	assert.Equal(t, domain.PlanStatusGenerated, got.PlanStatus)

	err = s.UpdateGoal(domain.Goal{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateGoal_KeepsCompletion(t *testing.T) {
	s := NewStore()
	g, _ := s.AddGoal("Bike", decimal.NewFromInt(100))
	stale, _ := s.Get(g.ID)

	s.EvaluateCompletion(balance("100"))

	stale.PlanStatus = domain.PlanStatusError
	require.NoError(t, s.UpdateGoal(stale))

	got, _ := s.Get(g.ID)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, domain.PlanStatusError, got.PlanStatus)
}

func TestGet_NotFound(t *testing.T) {
	_, err := NewStore().Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRestore(t *testing.T) {
	s := NewStore()
	s.Restore([]domain.Goal{
		{ID: "g1", Name: "Laptop", TargetAmount: decimal.NewFromInt(1500)},
		{ID: "g2", Name: "Trip", TargetAmount: decimal.NewFromInt(900), PlanStatus: domain.PlanStatusGenerating, BudgetPlan: "OLD"},
	})

	g1, err := s.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusIdle, g1.PlanStatus)

	g2, err := s.Get("g2")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusError, g2.PlanStatus)
	assert.Equal(t, "OLD", g2.BudgetPlan)
}
