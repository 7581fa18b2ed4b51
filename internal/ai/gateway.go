// Package ai defines the AI collaborator contract used by the core and its
// Gemini-backed implementation.
package ai

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/zenith/internal/domain"
)

// Gateway is the external AI capability boundary. Implementations never
// panic past this boundary; every failure is returned wrapped in
// domain.ErrGatewayFailure.
type Gateway interface {
	// ExtractReceipt reads merchant, total and date from a receipt image.
	// Any field may be missing.
	ExtractReceipt(ctx context.Context, image ReceiptImage) (Receipt, error)

	// SuggestCategory proposes a category label for a description. An empty
	// string means no suggestion.
	SuggestCategory(ctx context.Context, description string, known []string) (string, error)

	// SuggestGoals proposes savings goals for a financial snapshot. The list
	// may be empty.
	SuggestGoals(ctx context.Context, snapshot domain.Snapshot) ([]domain.GoalSuggestion, error)

	// GeneratePlan creates a budget plan for a goal with no prior plan.
	GeneratePlan(ctx context.Context, pc PlanContext) (string, error)

	// UpdatePlan refreshes a budget plan against the prior plan text.
	UpdatePlan(ctx context.Context, pc PlanContext, priorPlan string) (string, error)

	// AnalyzeScenario describes the impact of a "what if" scenario.
	AnalyzeScenario(ctx context.Context, scenario string, snapshot domain.Snapshot, goals []domain.Goal) (string, error)
}

// ReceiptImage is raw image bytes plus their MIME type.
type ReceiptImage struct {
	Data     []byte
	MIMEType string
}

// Receipt is a possibly partial extraction result.
type Receipt struct {
	Merchant string           `json:"merchant,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
	Date     *civil.Date      `json:"date,omitempty"`
}

// PlanContext is everything a plan request tells the collaborator.
type PlanContext struct {
	GoalName     string
	TargetAmount decimal.Decimal
	Balance      decimal.Decimal
	Recent       []domain.Transaction // newest first
}

func gatewayError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrGatewayFailure, err)
}
