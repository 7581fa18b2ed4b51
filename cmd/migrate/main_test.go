package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/config"
)

func TestResolve(t *testing.T) {
	cfg := config.Default()
	cfg.BigQuery.Project = "cfg-project"

	opts := resolve(cfg, "", "", "")
	assert.Equal(t, options{sqlitePath: "zenith.db", bqProject: "cfg-project", bqDataset: "zenith"}, opts)

	opts = resolve(cfg, "/tmp/x.db", "flag-project", "analytics")
	assert.Equal(t, options{sqlitePath: "/tmp/x.db", bqProject: "flag-project", bqDataset: "analytics"}, opts)
}

func TestMigrate_SQLiteOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	require.NoError(t, migrate(context.Background(), options{sqlitePath: path}, zerolog.Nop()))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	// running twice is harmless
	require.NoError(t, migrate(context.Background(), options{sqlitePath: path}, zerolog.Nop()))
}

func TestMigrate_NothingToDo(t *testing.T) {
	err := migrate(context.Background(), options{}, zerolog.Nop())
	assert.ErrorContains(t, err, "nothing to do")
}
