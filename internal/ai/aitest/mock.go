// Package aitest provides a configurable ai.Gateway for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
)

// PlanCall records the arguments of one plan call.
type PlanCall struct {
	Update  bool
	Context ai.PlanContext
	Prior   string
}

// MockGateway is a mock implementation of ai.Gateway. A nil Func field
// selects a fixed successful answer.
type MockGateway struct {
	ExtractReceiptFunc  func(ctx context.Context, image ai.ReceiptImage) (ai.Receipt, error)
	SuggestCategoryFunc func(ctx context.Context, description string, known []string) (string, error)
	SuggestGoalsFunc    func(ctx context.Context, snapshot domain.Snapshot) ([]domain.GoalSuggestion, error)
	GeneratePlanFunc    func(ctx context.Context, pc ai.PlanContext) (string, error)
	UpdatePlanFunc      func(ctx context.Context, pc ai.PlanContext, priorPlan string) (string, error)
	AnalyzeScenarioFunc func(ctx context.Context, scenario string, snapshot domain.Snapshot, goals []domain.Goal) (string, error)

	mu        sync.Mutex
	planCalls []PlanCall
}

// PlanCalls returns the plan calls received so far.
func (m *MockGateway) PlanCalls() []PlanCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlanCall(nil), m.planCalls...)
}

func (m *MockGateway) record(c PlanCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planCalls = append(m.planCalls, c)
}

func (m *MockGateway) ExtractReceipt(ctx context.Context, image ai.ReceiptImage) (ai.Receipt, error) {
	if m.ExtractReceiptFunc != nil {
		return m.ExtractReceiptFunc(ctx, image)
	}
	return ai.Receipt{Merchant: "Mock Merchant"}, nil
}

func (m *MockGateway) SuggestCategory(ctx context.Context, description string, known []string) (string, error) {
	if m.SuggestCategoryFunc != nil {
		return m.SuggestCategoryFunc(ctx, description, known)
	}
	return "Other", nil
}

func (m *MockGateway) SuggestGoals(ctx context.Context, snapshot domain.Snapshot) ([]domain.GoalSuggestion, error) {
	if m.SuggestGoalsFunc != nil {
		return m.SuggestGoalsFunc(ctx, snapshot)
	}
	return nil, nil
}

func (m *MockGateway) GeneratePlan(ctx context.Context, pc ai.PlanContext) (string, error) {
	m.record(PlanCall{Context: pc})
	if m.GeneratePlanFunc != nil {
		return m.GeneratePlanFunc(ctx, pc)
	}
	return "> Summary: mock plan", nil
}

func (m *MockGateway) UpdatePlan(ctx context.Context, pc ai.PlanContext, priorPlan string) (string, error) {
	m.record(PlanCall{Update: true, Context: pc, Prior: priorPlan})
	if m.UpdatePlanFunc != nil {
		return m.UpdatePlanFunc(ctx, pc, priorPlan)
	}
	return "> Summary: updated mock plan", nil
}

func (m *MockGateway) AnalyzeScenario(ctx context.Context, scenario string, snapshot domain.Snapshot, goals []domain.Goal) (string, error) {
	if m.AnalyzeScenarioFunc != nil {
		return m.AnalyzeScenarioFunc(ctx, scenario, snapshot, goals)
	}
	return "mock analysis", nil
}

var _ ai.Gateway = (*MockGateway)(nil)
