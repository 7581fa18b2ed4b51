// Command cli manages a zenith session stored in a local SQLite file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/config"
	"github.com/dvloznov/zenith/internal/logger"
	"github.com/dvloznov/zenith/internal/session"
	"github.com/dvloznov/zenith/internal/store/sqlite"
)

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zenith",
		Short: "Personal finance ledger with AI budget plans",
		Long:  "Record income and expenses, track savings goals and ask Gemini for budget plans.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", os.Getenv("ZENITH_CONFIG"), "YAML or TOML config file")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite session file (overrides config)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newSnapshotCmd(),
		newTxCmd(),
		newGoalCmd(),
		newPlanCmd(),
		newSuggestGoalsCmd(),
		newScanReceiptCmd(),
		newScenarioCmd(),
		newExportBigQueryCmd(),
		newImportBigQueryCmd(),
		newSyncNotionCmd(),
	)
	return root
}

// newGateway builds the Gemini gateway. Tests replace it.
var newGateway = func(ctx context.Context, cfg ai.GeminiConfig, log zerolog.Logger) (ai.Gateway, error) {
	gw, err := ai.NewGeminiGateway(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// app is one command invocation against the session file.
type app struct {
	cfg   config.Config
	log   zerolog.Logger
	store *sqlite.Store
	sess  *session.Session
	out   io.Writer
}

// openApp loads configuration, opens the session file and starts the plan
// workers. The Gemini gateway is only built when the command needs it.
func openApp(cmd *cobra.Command, needAI bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.Store.Path = flagDB
	}
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("no session file: set --db or store.path")
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	log, err := logger.Setup(logger.Options{Level: level, Format: cfg.Log.Format, Service: "zenith-cli", Out: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	var gateway ai.Gateway
	if needAI {
		if !cfg.GeminiEnabled() {
			return nil, fmt.Errorf("this command needs Gemini: set GEMINI_API_KEY or gemini.project")
		}
		gw, err := newGateway(ctx, cfg.GatewayConfig(), log)
		if err != nil {
			return nil, err
		}
		gateway = gw
	}

	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	sess := session.New(session.Options{
		Gateway:   gateway,
		Planner:   cfg.PlannerOptions(),
		Workers:   cfg.Planner.Workers,
		QueueSize: cfg.Planner.QueueSize,
		Logger:    log,
	})
	if err := sess.Load(ctx, store); err != nil {
		store.Close()
		return nil, err
	}
	if err := sess.Start(context.WithoutCancel(ctx)); err != nil {
		store.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: store, sess: sess, out: cmd.OutOrStdout()}, nil
}

// close stops the workers and, when save is set, writes the session back.
func (a *app) close(ctx context.Context, save bool) error {
	defer a.store.Close()

	if err := a.sess.Stop(ctx); err != nil {
		return fmt.Errorf("stopping plan workers: %w", err)
	}
	if !save {
		return nil
	}
	if err := a.sess.Save(ctx, a.store); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// changedError marks a failure after which the session still holds changes
// worth keeping, such as a goal whose plan request ended in error.
type changedError struct {
	err error
}

func (e *changedError) Error() string { return e.err.Error() }
func (e *changedError) Unwrap() error { return e.err }

func keepChanges(err error) error {
	if err == nil {
		return nil
	}
	return &changedError{err: err}
}

// run opens the app, calls fn and closes the app. When save is set the
// session is written back if fn succeeds or fails with a changedError.
func run(cmd *cobra.Command, needAI, save bool, fn func(a *app) error) error {
	a, err := openApp(cmd, needAI)
	if err != nil {
		return err
	}
	fnErr := fn(a)
	var changed *changedError
	closeErr := a.close(cmd.Context(), save && (fnErr == nil || errors.As(fnErr, &changed)))
	if fnErr != nil {
		return fnErr
	}
	return closeErr
}

func printChange(w io.Writer, c session.Change) {
	if c.PointsAwarded > 0 {
		fmt.Fprintf(w, "+%d points (total %d)\n", c.PointsAwarded, c.Points)
	}
	for _, g := range c.CompletedGoals {
		fmt.Fprintf(w, "Goal completed: %s\n", g.Name)
	}
}
