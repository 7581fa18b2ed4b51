package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// schemaDDL lists the tables a snapshot is written to. %[1]s is the fully
// qualified dataset prefix.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS %[1]s.session_snapshots (
		snapshot_id STRING NOT NULL,
		points      INT64 NOT NULL,
		saved_ts    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.transactions (
		snapshot_id      STRING NOT NULL,
		transaction_id   STRING NOT NULL,
		position         INT64 NOT NULL,
		transaction_date DATE NOT NULL,
		amount           NUMERIC NOT NULL,
		direction        STRING NOT NULL,
		description      STRING NOT NULL,
		category_name    STRING NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.goals (
		snapshot_id   STRING NOT NULL,
		goal_id       STRING NOT NULL,
		position      INT64 NOT NULL,
		name          STRING NOT NULL,
		target_amount NUMERIC NOT NULL,
		is_completed  BOOL NOT NULL,
		budget_plan   STRING,
		plan_status   STRING NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.categories (
		snapshot_id STRING NOT NULL,
		name        STRING NOT NULL,
		position    INT64 NOT NULL
	)`,
}

// EnsureSchema creates the snapshot tables if they do not exist. The dataset
// itself must already exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	prefix := "`" + r.projectID + "." + r.datasetID + "`"
	for _, ddl := range schemaDDL {
		if err := runStatement(ctx, r.client, fmt.Sprintf(ddl, prefix)); err != nil {
			return fmt.Errorf("EnsureSchema: %w", err)
		}
	}
	return nil
}

func runStatement(ctx context.Context, client *bigquery.Client, sql string) error {
	job, err := client.Query(sql).Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
