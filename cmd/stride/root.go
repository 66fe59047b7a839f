package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/ai"
	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/config"
	"github.com/goalstride/stride/internal/planner"
	"github.com/goalstride/stride/internal/storage"
)

var (
	dbPath  string
	cfgPath string

	// Set by setup() before any subcommand runs.
	appCfg *config.Config
	store  storage.Storage
	mgr    *planner.Manager
)

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Goal tracker with AI-generated plans and check-in streaks",
	Long: `Stride turns a free-text goal into a concrete plan of daily steps
and tracks your follow-through with per-step check-in streaks.

Plans are generated by the Anthropic API (set ANTHROPIC_API_KEY).
Without a key, stride still works for manual goals, steps, check-ins,
and streaks; only plan generation and insights need the API.

Data lives in a local SQLite database (default .stride/stride.db).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default .stride/config.yaml)")
}

// setup loads config, opens the database, and builds the manager.
// The AI generator is optional: without an API key the manager runs
// with gen=nil and AI-backed commands degrade or report the problem.
func setup(ctx context.Context) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	appCfg = cfg

	path := cfg.DBPath
	if dbPath != "" {
		path = dbPath
	}

	store, err = storage.NewStorage(ctx, &storage.Config{Path: path})
	if err != nil {
		return fmt.Errorf("opening database %s: %w", path, err)
	}

	var gen planner.Generator
	if p, aiErr := ai.New(ai.Config{Model: cfg.Model}); aiErr == nil {
		gen = p
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	mgr = planner.New(store, gen, clock.SystemClock{}, planner.Config{
		MaxSteps:            cfg.MaxSteps,
		PlanningHorizonDays: cfg.PlanningHorizonDays,
		Strict:              cfg.Strict(),
		AITimeout:           timeout,
	})
	return nil
}

// fail prints the error in the standard format and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
