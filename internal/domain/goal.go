package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PlanStatus is the state of a goal's budget plan.
type PlanStatus string

const (
	PlanStatusIdle       PlanStatus = "idle"
	PlanStatusGenerating PlanStatus = "generating"
	PlanStatusGenerated  PlanStatus = "generated"
	PlanStatusError      PlanStatus = "error"
)

// ParsePlanStatus maps a stored status back to a PlanStatus. Empty maps to idle.
func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(s) {
	case "", PlanStatusIdle:
		return PlanStatusIdle, nil
	case PlanStatusGenerating, PlanStatusGenerated, PlanStatusError:
		return PlanStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown plan status %q", ErrInvalidInput, s)
	}
}

// Goal is a savings target tracked against the ledger balance.
type Goal struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	IsCompleted  bool            `json:"is_completed"`
	BudgetPlan   string          `json:"budget_plan,omitempty"`
	PlanStatus   PlanStatus      `json:"plan_status"`
}

// HasPlan reports whether a previous plan exists, which turns the next plan
// request into an update.
func (g Goal) HasPlan() bool {
	return g.BudgetPlan != ""
}

// GoalSuggestion is a goal proposed by the AI gateway.
type GoalSuggestion struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}
