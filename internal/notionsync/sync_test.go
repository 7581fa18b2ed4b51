package notionsync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
)

// MockNotionService is a mock implementation of NotionService for testing.
type MockNotionService struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	DeletePageFunc    func(ctx context.Context, pageID string) error

	created  []notionapi.Properties
	updated  map[string]notionapi.Properties
	archived []string
}

func (m *MockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	m.created = append(m.created, properties)
	return &notionapi.Page{ID: notionapi.ObjectID("new-page")}, nil
}

func (m *MockNotionService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	if m.updated == nil {
		m.updated = make(map[string]notionapi.Properties)
	}
	m.updated[pageID] = properties
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *MockNotionService) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, req)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (m *MockNotionService) DeletePage(ctx context.Context, pageID string) error {
	if m.DeletePageFunc != nil {
		return m.DeletePageFunc(ctx, pageID)
	}
	m.archived = append(m.archived, pageID)
	return nil
}

func goalPage(pageID, goalID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			PropGoalID: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: goalID}},
			},
		},
	}
}

func testGoals() []domain.Goal {
	return []domain.Goal{
		{ID: "g1", Name: "Car", TargetAmount: decimal.NewFromInt(5000), PlanStatus: domain.PlanStatusGenerated, BudgetPlan: "> Summary: save"},
		{ID: "g2", Name: "Trip", TargetAmount: decimal.RequireFromString("899.50"), IsCompleted: true},
	}
}

func TestGoalToNotionProperties(t *testing.T) {
	props := GoalToNotionProperties(testGoals()[0])

	title, ok := props[PropName].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Car", title.Title[0].Text.Content)

	num, ok := props[PropTarget].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, 5000.0, num.Number)

	sel, ok := props[PropPlanStatus].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "generated", sel.Select.Name)

	plan, ok := props[PropPlan].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "> Summary: save", plan.RichText[0].Text.Content)

	assert.Equal(t, "g1", extractGoalID(notionapi.Page{Properties: props}))
}

func TestGoalToNotionProperties_EmptyPlanAndStatus(t *testing.T) {
	props := GoalToNotionProperties(domain.Goal{ID: "g", Name: "x"})

	sel := props[PropPlanStatus].(notionapi.SelectProperty)
	assert.Equal(t, "idle", sel.Select.Name)

	plan := props[PropPlan].(notionapi.RichTextProperty)
	assert.Empty(t, plan.RichText)
}

func TestGoalToNotionProperties_TruncatesPlan(t *testing.T) {
	long := strings.Repeat("é", maxRichTextLen+50)
	props := GoalToNotionProperties(domain.Goal{ID: "g", BudgetPlan: long})

	plan := props[PropPlan].(notionapi.RichTextProperty)
	assert.Len(t, []rune(plan.RichText[0].Text.Content), maxRichTextLen)
}

func TestSyncGoals_CreatesAndUpdates(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			assert.Equal(t, "db", databaseID)
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{goalPage("page-1", "g1")}}, nil
		},
	}

	s := NewSyncer(mock, "db", zerolog.Nop())
	res, err := s.SyncGoals(context.Background(), testGoals(), Options{})
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Created: 1, Updated: 1}, res)
	require.Contains(t, mock.updated, "page-1")
	require.Len(t, mock.created, 1)
	assert.Equal(t, "g2", extractGoalID(notionapi.Page{Properties: mock.created[0]}))
}

func TestSyncGoals_Pagination(t *testing.T) {
	var cursors []notionapi.Cursor
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			cursors = append(cursors, req.StartCursor)
			if req.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{
					Results:    []notionapi.Page{goalPage("page-1", "g1")},
					HasMore:    true,
					NextCursor: "next",
				}, nil
			}
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{goalPage("page-2", "g2")}}, nil
		},
	}

	res, err := NewSyncer(mock, "db", zerolog.Nop()).SyncGoals(context.Background(), testGoals(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []notionapi.Cursor{"", "next"}, cursors)
	assert.Equal(t, 2, res.Updated)
	assert.Empty(t, mock.created)
}

func TestSyncGoals_DryRunWritesNothing(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{goalPage("page-1", "g1"), goalPage("page-9", "gone")}}, nil
		},
	}

	res, err := NewSyncer(mock, "db", zerolog.Nop()).SyncGoals(context.Background(), testGoals(), Options{DryRun: true, Prune: true})
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Created: 1, Updated: 1, Archived: 1}, res)
	assert.Empty(t, mock.created)
	assert.Empty(t, mock.updated)
	assert.Empty(t, mock.archived)
}

func TestSyncGoals_Prune(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{
				goalPage("page-1", "g1"),
				goalPage("page-9", "gone"),
				{ID: "page-untagged"},
			}}, nil
		},
	}

	res, err := NewSyncer(mock, "db", zerolog.Nop()).SyncGoals(context.Background(), testGoals(), Options{Prune: true})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Archived)
	assert.ElementsMatch(t, []string{"page-9", "page-untagged"}, mock.archived)
}

func TestSyncGoals_PageFailuresAreCounted(t *testing.T) {
	mock := &MockNotionService{
		CreatePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
			return nil, errors.New("rate limited")
		},
	}

	res, err := NewSyncer(mock, "db", zerolog.Nop()).SyncGoals(context.Background(), testGoals(), Options{})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Failed: 2}, res)
}

func TestSyncGoals_QueryError(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return nil, errors.New("unauthorized")
		},
	}

	_, err := NewSyncer(mock, "db", zerolog.Nop()).SyncGoals(context.Background(), testGoals(), Options{})
	assert.ErrorContains(t, err, "unauthorized")
}

func TestSyncGoals_RequiresDatabaseID(t *testing.T) {
	_, err := NewSyncer(&MockNotionService{}, "", zerolog.Nop()).SyncGoals(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewNotionClient_RequiresToken(t *testing.T) {
	_, err := NewNotionClient("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
