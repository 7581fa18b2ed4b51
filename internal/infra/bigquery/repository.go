// Package bigquery stores session state snapshots in BigQuery. Every Save
// appends a new snapshot; Load reads the most recent one.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/zenith/internal/session"
)

const (
	// DefaultDatasetID is the dataset used when none is configured.
	DefaultDatasetID = "zenith"

	snapshotsTable    = "session_snapshots"
	transactionsTable = "transactions"
	goalsTable        = "goals"
	categoriesTable   = "categories"
)

// Repository is a session.Repository backed by BigQuery. It holds a shared
// client; call Close when done.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	now       func() time.Time
}

// NewRepository creates a BigQuery client for projectID.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		now:       time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *Repository) table(name string) *bigquery.Table {
	return r.client.DatasetInProject(r.projectID, r.datasetID).Table(name)
}

func (r *Repository) qualified(name string) string {
	return "`" + r.projectID + "." + r.datasetID + "." + name + "`"
}

// Save appends st as a new snapshot. Row tables are written in parallel; the
// snapshot marker is written last so a partial save is never loaded.
func (r *Repository) Save(ctx context.Context, st session.State) error {
	snapshotID := uuid.NewString()
	rows := buildRows(snapshotID, st)

	g, gctx := errgroup.WithContext(ctx)
	if len(rows.transactions) > 0 {
		g.Go(func() error {
			return r.put(gctx, transactionsTable, rows.transactions)
		})
	}
	if len(rows.goals) > 0 {
		g.Go(func() error {
			return r.put(gctx, goalsTable, rows.goals)
		})
	}
	if len(rows.categories) > 0 {
		g.Go(func() error {
			return r.put(gctx, categoriesTable, rows.categories)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("bigquery.Save: %w", err)
	}

	marker := &SnapshotRow{SnapshotID: snapshotID, Points: st.Points, SavedTS: r.now()}
	if err := r.table(snapshotsTable).Inserter().Put(ctx, marker); err != nil {
		return fmt.Errorf("bigquery.Save: inserting snapshot: %w", err)
	}
	return nil
}

func (r *Repository) put(ctx context.Context, table string, src interface{}) error {
	if err := r.table(table).Inserter().Put(ctx, src); err != nil {
		return fmt.Errorf("inserting %s rows: %w", table, err)
	}
	return nil
}

type snapshotRows struct {
	transactions []*TransactionRow
	goals        []*GoalRow
	categories   []*CategoryRow
}

func buildRows(snapshotID string, st session.State) snapshotRows {
	var out snapshotRows
	for i, t := range st.Transactions {
		out.transactions = append(out.transactions, newTransactionRow(snapshotID, i, t))
	}
	for i, g := range st.Goals {
		out.goals = append(out.goals, newGoalRow(snapshotID, i, g))
	}
	for i, c := range st.Categories {
		out.categories = append(out.categories, &CategoryRow{SnapshotID: snapshotID, Name: c, Position: int64(i)})
	}
	return out
}

// Load reads the latest snapshot. With no snapshot saved it returns a zero
// State.
func (r *Repository) Load(ctx context.Context) (session.State, error) {
	latest, err := r.latestSnapshot(ctx)
	if err != nil {
		return session.State{}, fmt.Errorf("bigquery.Load: %w", err)
	}
	if latest == nil {
		return session.State{}, nil
	}

	st := session.State{Points: latest.Points}
	params := []bigquery.QueryParameter{{Name: "snapshot_id", Value: latest.SnapshotID}}

	txRows, err := readAll[TransactionRow](ctx, r.client, fmt.Sprintf(`
		SELECT snapshot_id, transaction_id, position, transaction_date, amount, direction, description, category_name
		FROM %s
		WHERE snapshot_id = @snapshot_id
		ORDER BY position
	`, r.qualified(transactionsTable)), params)
	if err != nil {
		return session.State{}, fmt.Errorf("bigquery.Load: transactions: %w", err)
	}
	for _, row := range txRows {
		t, err := row.toDomain()
		if err != nil {
			return session.State{}, fmt.Errorf("bigquery.Load: %w", err)
		}
		st.Transactions = append(st.Transactions, t)
	}

	goalRows, err := readAll[GoalRow](ctx, r.client, fmt.Sprintf(`
		SELECT snapshot_id, goal_id, position, name, target_amount, is_completed, budget_plan, plan_status
		FROM %s
		WHERE snapshot_id = @snapshot_id
		ORDER BY position
	`, r.qualified(goalsTable)), params)
	if err != nil {
		return session.State{}, fmt.Errorf("bigquery.Load: goals: %w", err)
	}
	for _, row := range goalRows {
		g, err := row.toDomain()
		if err != nil {
			return session.State{}, fmt.Errorf("bigquery.Load: %w", err)
		}
		st.Goals = append(st.Goals, g)
	}

	catRows, err := readAll[CategoryRow](ctx, r.client, fmt.Sprintf(`
		SELECT snapshot_id, name, position
		FROM %s
		WHERE snapshot_id = @snapshot_id
		ORDER BY position
	`, r.qualified(categoriesTable)), params)
	if err != nil {
		return session.State{}, fmt.Errorf("bigquery.Load: categories: %w", err)
	}
	for _, row := range catRows {
		st.Categories = append(st.Categories, row.Name)
	}

	return st, nil
}

func (r *Repository) latestSnapshot(ctx context.Context) (*SnapshotRow, error) {
	rows, err := readAll[SnapshotRow](ctx, r.client, fmt.Sprintf(`
		SELECT snapshot_id, points, saved_ts
		FROM %s
		ORDER BY saved_ts DESC
		LIMIT 1
	`, r.qualified(snapshotsTable)), nil)
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// readAll runs a query and collects every row.
func readAll[T any](ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) ([]*T, error) {
	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var rows []*T
	for {
		var row T
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

var _ session.Repository = (*Repository)(nil)
