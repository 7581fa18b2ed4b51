// Command migrate prepares zenith storage: the SQLite session schema and the
// BigQuery snapshot tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dvloznov/zenith/internal/config"
	"github.com/dvloznov/zenith/internal/infra/bigquery"
	"github.com/dvloznov/zenith/internal/logger"
	"github.com/dvloznov/zenith/internal/store/sqlite"
)

type options struct {
	sqlitePath string
	bqProject  string
	bqDataset  string
}

func main() {
	var (
		configPath = flag.String("config", os.Getenv("ZENITH_CONFIG"), "YAML or TOML config file")
		dbPath     = flag.String("db", "", "SQLite session file (overrides config)")
		project    = flag.String("project", "", "GCP project for BigQuery (overrides config; empty skips BigQuery)")
		dataset    = flag.String("dataset", "", "BigQuery dataset (overrides config)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	opts := resolve(cfg, *dbPath, *project, *dataset)
	if err := migrate(context.Background(), opts, log); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	log.Info().Msg("Migration complete")
}

// resolve applies flag overrides to the configured locations.
func resolve(cfg config.Config, dbPath, project, dataset string) options {
	opts := options{
		sqlitePath: cfg.Store.Path,
		bqProject:  cfg.BigQuery.Project,
		bqDataset:  cfg.BigQuery.Dataset,
	}
	if dbPath != "" {
		opts.sqlitePath = dbPath
	}
	if project != "" {
		opts.bqProject = project
	}
	if dataset != "" {
		opts.bqDataset = dataset
	}
	return opts
}

func migrate(ctx context.Context, opts options, log zerolog.Logger) error {
	if opts.sqlitePath == "" && opts.bqProject == "" {
		return fmt.Errorf("migrate: nothing to do: no sqlite path or BigQuery project")
	}

	if opts.sqlitePath != "" {
		// Open applies the schema.
		store, err := sqlite.Open(opts.sqlitePath)
		if err != nil {
			return fmt.Errorf("migrate: sqlite: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("migrate: sqlite: %w", err)
		}
		log.Info().Str("path", opts.sqlitePath).Msg("SQLite schema ready")
	}

	if opts.bqProject != "" {
		repo, err := bigquery.NewRepository(ctx, opts.bqProject, opts.bqDataset)
		if err != nil {
			return fmt.Errorf("migrate: bigquery: %w", err)
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("migrate: bigquery: %w", err)
		}
		log.Info().Str("project", opts.bqProject).Str("dataset", opts.bqDataset).Msg("BigQuery tables ready")
	}
	return nil
}
