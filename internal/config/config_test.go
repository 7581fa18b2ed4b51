package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/planner"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	var cfg Config
	for name := range envStrings(&cfg) {
		t.Setenv(name, "")
	}
	t.Setenv("ZENITH_PLAN_WORKERS", "")
	t.Setenv("ZENITH_PLAN_TIMEOUT", "")
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.GeminiEnabled())

	pc := cfg.PlannerOptions()
	assert.Equal(t, planner.PolicyReject, pc.Policy)
	assert.Equal(t, planner.DefaultTimeout, pc.Timeout)
	assert.Equal(t, planner.DefaultRecentLimit, pc.RecentLimit)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "zenith.yaml", `
server:
  port: "9090"
planner:
  policy: last_issued_wins
  workers: 2
  timeout_seconds: 5
notion:
  database_id: db-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Planner.Workers)
	assert.Equal(t, "db-1", cfg.Notion.DatabaseID)
	// untouched sections keep defaults
	assert.Equal(t, "zenith", cfg.BigQuery.Dataset)

	pc := cfg.PlannerOptions()
	assert.Equal(t, planner.PolicyLastIssuedWins, pc.Policy)
	assert.Equal(t, 5*time.Second, pc.Timeout)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "zenith.toml", `
[log]
level = "debug"
format = "json"

[gemini]
api_key = "file-key"
model = "gemini-test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.GeminiEnabled())
	assert.Equal(t, "gemini-test", cfg.GatewayConfig().Model)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "zenith.yml", "gemini:\n  api_key: file-key\nplanner:\n  workers: 2\n")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("ZENITH_PLAN_WORKERS", "9")
	t.Setenv("NOTION_TOKEN", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, 9, cfg.Planner.Workers)
	assert.Equal(t, "secret", cfg.Notion.Token)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		env     map[string]string
		wantErr error
	}{
		{name: "unsupported extension", file: "zenith.json", body: "{}", wantErr: domain.ErrInvalidInput},
		{name: "bad policy", file: "zenith.yaml", body: "planner:\n  policy: newest\n", wantErr: domain.ErrInvalidInput},
		{name: "zero workers", file: "zenith.yaml", body: "planner:\n  workers: 0\n", wantErr: domain.ErrInvalidInput},
		{name: "bad log format", file: "zenith.toml", body: "[log]\nformat = \"xml\"\n", wantErr: domain.ErrInvalidInput},
		{name: "non-integer env", file: "zenith.yaml", body: "", env: map[string]string{"ZENITH_PLAN_TIMEOUT": "soon"}, wantErr: domain.ErrInvalidInput},
		{name: "malformed yaml", file: "zenith.yaml", body: "planner: [", wantErr: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
