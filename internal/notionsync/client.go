package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/zenith/internal/domain"
)

// NotionClient implements NotionService over the Notion REST API. Each goal
// is mirrored as one page in a goals database, keyed by its goal ID.
type NotionClient struct {
	client *notionapi.Client
}

// NewNotionClient creates a NotionClient for the integration token that has
// access to the goals database.
func NewNotionClient(token string) (*NotionClient, error) {
	if token == "" {
		return nil, fmt.Errorf("NewNotionClient: %w: notion token is required", domain.ErrInvalidInput)
	}
	return &NotionClient{
		client: notionapi.NewClient(notionapi.Token(token)),
	}, nil
}

// CreatePage adds the page for a goal not yet mirrored in the goals database
// databaseID.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	}

	page, err := n.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}

	return page, nil
}

// UpdatePage rewrites the mirrored properties of a goal's page, such as its
// plan status or plan text.
func (n *NotionClient) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageUpdateRequest{
		Properties: properties,
	}

	page, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), req)
	if err != nil {
		return nil, fmt.Errorf("UpdatePage: %w", err)
	}

	return page, nil
}

// QueryDatabase returns one batch of goal pages from databaseID. Callers
// follow NextCursor to collect the rest.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), filter)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}

	return resp, nil
}

// DeletePage archives the page of a goal that no longer exists in the
// session. Notion has no hard delete.
func (n *NotionClient) DeletePage(ctx context.Context, pageID string) error {
	req := &notionapi.PageUpdateRequest{
		Archived: true,
	}

	_, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), req)
	if err != nil {
		return fmt.Errorf("DeletePage: %w", err)
	}

	return nil
}
