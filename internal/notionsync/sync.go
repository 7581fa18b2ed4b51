// Package notionsync mirrors goals and their budget plans into a Notion
// database.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/dvloznov/zenith/internal/domain"
)

const pageSize = 100

// Options controls a goal sync.
type Options struct {
	// DryRun logs the changes without writing to Notion.
	DryRun bool
	// Prune archives pages whose Goal ID is not among the synced goals.
	Prune bool
}

// SyncResult counts the pages touched by a sync.
type SyncResult struct {
	Created  int
	Updated  int
	Archived int
	Failed   int
}

// Syncer writes goals to one Notion database.
type Syncer struct {
	service    NotionService
	databaseID string
	log        zerolog.Logger
}

// NewSyncer returns a Syncer for the given database.
func NewSyncer(service NotionService, databaseID string, log zerolog.Logger) *Syncer {
	return &Syncer{service: service, databaseID: databaseID, log: log}
}

// SyncGoals creates or updates one page per goal, matched by the Goal ID
// property. Per-page failures are logged and counted; only a failed database
// query aborts the sync.
func (s *Syncer) SyncGoals(ctx context.Context, goals []domain.Goal, opts Options) (SyncResult, error) {
	var res SyncResult
	if s.databaseID == "" {
		return res, fmt.Errorf("SyncGoals: %w: notion database id is required", domain.ErrInvalidInput)
	}

	pages, err := s.queryAllPages(ctx)
	if err != nil {
		return res, fmt.Errorf("SyncGoals: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if id := extractGoalID(page); id != "" {
			existing[id] = string(page.ID)
		}
	}

	s.log.Info().
		Int("goal_count", len(goals)).
		Int("notion_page_count", len(pages)).
		Bool("dry_run", opts.DryRun).
		Msg("Syncing goals to Notion")

	wanted := make(map[string]bool, len(goals))
	for _, g := range goals {
		wanted[g.ID] = true
		props := GoalToNotionProperties(g)

		if pageID, ok := existing[g.ID]; ok {
			if opts.DryRun {
				s.log.Info().Str("goal_id", g.ID).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				res.Updated++
				continue
			}
			if _, err := s.service.UpdatePage(ctx, pageID, props); err != nil {
				s.log.Warn().Err(err).Str("goal_id", g.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		if opts.DryRun {
			s.log.Info().Str("goal_id", g.ID).Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}
		page, err := s.service.CreatePage(ctx, s.databaseID, props)
		if err != nil {
			s.log.Warn().Err(err).Str("goal_id", g.ID).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		s.log.Debug().Str("goal_id", g.ID).Str("page_id", string(page.ID)).Msg("Created Notion page")
		res.Created++
	}

	if opts.Prune {
		for _, page := range pages {
			if wanted[extractGoalID(page)] {
				continue
			}
			if opts.DryRun {
				s.log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
				res.Archived++
				continue
			}
			if err := s.service.DeletePage(ctx, string(page.ID)); err != nil {
				s.log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
				res.Failed++
				continue
			}
			res.Archived++
		}
	}

	s.log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Msg("Goal sync completed")

	return res, nil
}

func (s *Syncer) queryAllPages(ctx context.Context) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: pageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.service.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}
