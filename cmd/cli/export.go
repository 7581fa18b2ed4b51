package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenith/internal/infra/bigquery"
	"github.com/dvloznov/zenith/internal/notionsync"
)

func bigQueryFlags(cmd *cobra.Command, project, dataset *string) {
	cmd.Flags().StringVar(project, "project", "", "GCP project (overrides bigquery.project)")
	cmd.Flags().StringVar(dataset, "dataset", "", "Dataset (overrides bigquery.dataset)")
}

func (a *app) bigQueryRepo(cmd *cobra.Command, project, dataset string) (*bigquery.Repository, error) {
	if project == "" {
		project = a.cfg.BigQuery.Project
	}
	if dataset == "" {
		dataset = a.cfg.BigQuery.Dataset
	}
	if project == "" {
		return nil, fmt.Errorf("ZENITH_BQ_PROJECT, bigquery.project or --project is required")
	}
	return bigquery.NewRepository(cmd.Context(), project, dataset)
}

func newExportBigQueryCmd() *cobra.Command {
	var project, dataset string
	cmd := &cobra.Command{
		Use:   "export-bigquery",
		Short: "Append a snapshot of the session to BigQuery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, false, func(a *app) error {
				repo, err := a.bigQueryRepo(cmd, project, dataset)
				if err != nil {
					return err
				}
				defer repo.Close()

				if err := repo.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				if err := a.sess.Save(cmd.Context(), repo); err != nil {
					return err
				}
				st := a.sess.Export()
				fmt.Fprintf(a.out, "Exported %d transactions and %d goals\n", len(st.Transactions), len(st.Goals))
				return nil
			})
		},
	}
	bigQueryFlags(cmd, &project, &dataset)
	return cmd
}

func newImportBigQueryCmd() *cobra.Command {
	var project, dataset string
	cmd := &cobra.Command{
		Use:   "import-bigquery",
		Short: "Replace the local session with the latest BigQuery snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, true, func(a *app) error {
				repo, err := a.bigQueryRepo(cmd, project, dataset)
				if err != nil {
					return err
				}
				defer repo.Close()

				if err := a.sess.Load(cmd.Context(), repo); err != nil {
					return err
				}
				st := a.sess.Export()
				fmt.Fprintf(a.out, "Imported %d transactions and %d goals\n", len(st.Transactions), len(st.Goals))
				return nil
			})
		},
	}
	bigQueryFlags(cmd, &project, &dataset)
	return cmd
}

func newSyncNotionCmd() *cobra.Command {
	var (
		databaseID string
		dryRun     bool
		prune      bool
	)
	cmd := &cobra.Command{
		Use:   "sync-notion",
		Short: "Mirror goals and their plans into a Notion database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, false, func(a *app) error {
				if databaseID == "" {
					databaseID = a.cfg.Notion.DatabaseID
				}
				client, err := notionsync.NewNotionClient(a.cfg.Notion.Token)
				if err != nil {
					return err
				}

				syncer := notionsync.NewSyncer(client, databaseID, a.log)
				res, err := syncer.SyncGoals(cmd.Context(), a.sess.Goals(), notionsync.Options{DryRun: dryRun, Prune: prune})
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created %d, updated %d, archived %d, failed %d\n",
					res.Created, res.Updated, res.Archived, res.Failed)
				if res.Failed > 0 {
					return fmt.Errorf("%d notion pages failed to sync", res.Failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&databaseID, "database-id", "", "Notion database id (overrides notion.database_id)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log changes without writing to Notion")
	cmd.Flags().BoolVar(&prune, "prune", false, "Archive pages for goals that no longer exist")
	return cmd
}
