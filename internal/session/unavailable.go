package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
)

var errNoGateway = errors.New("AI gateway not configured")

// unavailableGateway stands in when no AI gateway is configured. Every call
// fails the same way a real gateway failure would.
type unavailableGateway struct{}

func (unavailableGateway) fail(op string) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrGatewayFailure, errNoGateway)
}

func (g unavailableGateway) ExtractReceipt(context.Context, ai.ReceiptImage) (ai.Receipt, error) {
	return ai.Receipt{}, g.fail("ExtractReceipt")
}

func (g unavailableGateway) SuggestCategory(context.Context, string, []string) (string, error) {
	return "", g.fail("SuggestCategory")
}

func (g unavailableGateway) SuggestGoals(context.Context, domain.Snapshot) ([]domain.GoalSuggestion, error) {
	return nil, g.fail("SuggestGoals")
}

func (g unavailableGateway) GeneratePlan(context.Context, ai.PlanContext) (string, error) {
	return "", g.fail("GeneratePlan")
}

func (g unavailableGateway) UpdatePlan(context.Context, ai.PlanContext, string) (string, error) {
	return "", g.fail("UpdatePlan")
}

func (g unavailableGateway) AnalyzeScenario(context.Context, string, domain.Snapshot, []domain.Goal) (string, error) {
	return "", g.fail("AnalyzeScenario")
}

var _ ai.Gateway = unavailableGateway{}
