// Package config loads service settings from defaults, an optional YAML or
// TOML file, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/planner"
)

// Config holds all zenith configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Gemini   GeminiConfig   `yaml:"gemini" toml:"gemini"`
	Planner  PlannerConfig  `yaml:"planner" toml:"planner"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
	GCS      GCSConfig      `yaml:"gcs" toml:"gcs"`
	BigQuery BigQueryConfig `yaml:"bigquery" toml:"bigquery"`
	Notion   NotionConfig   `yaml:"notion" toml:"notion"`
}

type ServerConfig struct {
	Port string `yaml:"port" toml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format" toml:"format"`
}

// GeminiConfig selects the Gemini backend. A project switches to Vertex AI.
type GeminiConfig struct {
	APIKey   string `yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	Project  string `yaml:"project,omitempty" toml:"project,omitempty"`
	Location string `yaml:"location,omitempty" toml:"location,omitempty"`
	Model    string `yaml:"model" toml:"model"`
}

// PlannerConfig tunes the plan orchestrator and its job queue.
type PlannerConfig struct {
	Policy         string `yaml:"policy" toml:"policy"`
	Workers        int    `yaml:"workers" toml:"workers"`
	QueueSize      int    `yaml:"queue_size" toml:"queue_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
	RecentLimit    int    `yaml:"recent_limit" toml:"recent_limit"`
}

// StoreConfig locates the sqlite session file. An empty path keeps the
// session in memory only.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type GCSConfig struct {
	Bucket string `yaml:"bucket,omitempty" toml:"bucket,omitempty"`
}

type BigQueryConfig struct {
	Project string `yaml:"project,omitempty" toml:"project,omitempty"`
	Dataset string `yaml:"dataset" toml:"dataset"`
}

type NotionConfig struct {
	Token      string `yaml:"token,omitempty" toml:"token,omitempty"`
	DatabaseID string `yaml:"database_id,omitempty" toml:"database_id,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Level: "info", Format: "console"},
		Gemini: GeminiConfig{Model: ai.DefaultModelName, Location: "us-central1"},
		Planner: PlannerConfig{
			Policy:         string(planner.PolicyReject),
			Workers:        5,
			QueueSize:      64,
			TimeoutSeconds: int(planner.DefaultTimeout / time.Second),
			RecentLimit:    planner.DefaultRecentLimit,
		},
		Store:    StoreConfig{Path: "zenith.db"},
		BigQuery: BigQueryConfig{Dataset: "zenith"},
	}
}

// Load builds the configuration. path may be empty; otherwise its extension
// picks the format (.yaml, .yml or .toml).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("Load: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("Load: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing yaml config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing toml config: %w", err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", domain.ErrInvalidInput, filepath.Ext(path))
	}
	return nil
}

// envStrings maps variable names to the fields they override.
func envStrings(cfg *Config) map[string]*string {
	return map[string]*string{
		"PORT":                 &cfg.Server.Port,
		"ZENITH_LOG_LEVEL":     &cfg.Log.Level,
		"ZENITH_LOG_FORMAT":    &cfg.Log.Format,
		"GEMINI_API_KEY":       &cfg.Gemini.APIKey,
		"GOOGLE_CLOUD_PROJECT": &cfg.Gemini.Project,
		"ZENITH_MODEL":         &cfg.Gemini.Model,
		"ZENITH_PLAN_POLICY":   &cfg.Planner.Policy,
		"ZENITH_DB":            &cfg.Store.Path,
		"GCS_BUCKET":           &cfg.GCS.Bucket,
		"ZENITH_BQ_PROJECT":    &cfg.BigQuery.Project,
		"ZENITH_BQ_DATASET":    &cfg.BigQuery.Dataset,
		"NOTION_TOKEN":         &cfg.Notion.Token,
		"NOTION_DATABASE_ID":   &cfg.Notion.DatabaseID,
	}
}

func applyEnv(cfg *Config) error {
	for name, field := range envStrings(cfg) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"ZENITH_PLAN_WORKERS": &cfg.Planner.Workers,
		"ZENITH_PLAN_TIMEOUT": &cfg.Planner.TimeoutSeconds,
	}
	for name, field := range ints {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, name, v)
		}
		*field = n
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := planner.ParsePolicy(c.Planner.Policy); err != nil {
		return err
	}
	if c.Planner.Workers <= 0 {
		return fmt.Errorf("%w: planner.workers must be positive", domain.ErrInvalidInput)
	}
	if c.Planner.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: planner.timeout_seconds must be positive", domain.ErrInvalidInput)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json", domain.ErrInvalidInput)
	}
	return nil
}

// PlannerOptions converts the planner section for planner.New.
func (c Config) PlannerOptions() planner.Config {
	policy, _ := planner.ParsePolicy(c.Planner.Policy)
	return planner.Config{
		Policy:      policy,
		Timeout:     time.Duration(c.Planner.TimeoutSeconds) * time.Second,
		RecentLimit: c.Planner.RecentLimit,
	}
}

// GeminiEnabled reports whether enough is set to construct a gateway.
func (c Config) GeminiEnabled() bool {
	return c.Gemini.APIKey != "" || c.Gemini.Project != ""
}

// GatewayConfig converts the gemini section for ai.NewGeminiGateway.
func (c Config) GatewayConfig() ai.GeminiConfig {
	return ai.GeminiConfig{
		APIKey:   c.Gemini.APIKey,
		Project:  c.Gemini.Project,
		Location: c.Gemini.Location,
		Model:    c.Gemini.Model,
	}
}
