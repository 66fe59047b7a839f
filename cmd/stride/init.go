package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stride in the current directory",
	Long: `Initialize stride by creating the .stride/ directory with a database
and a default config file.

This creates:
  - .stride/ directory
  - .stride/stride.db (SQLite database)
  - .stride/config.yaml (defaults, only if absent)

Example:
  cd ~/life
  stride init
  stride goal new "Run a half marathon" --ai --target 2026-12-01`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// setup() already created the database by opening it. Scaffold
		// the config file so users have something to edit.
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = config.DefaultPath
		}
		if err := os.MkdirAll(filepath.Dir(cfgFile), 0o755); err != nil {
			fail(fmt.Errorf("creating %s: %w", filepath.Dir(cfgFile), err))
		}
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			content := fmt.Sprintf("db_path: %s\nmax_steps: %d\nplanning_horizon_days: %d\nstreak_mode: %s\n",
				appCfg.DBPath, appCfg.MaxSteps, appCfg.PlanningHorizonDays, appCfg.StreakMode)
			if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
				fail(fmt.Errorf("writing %s: %w", cfgFile, err))
			}
		}

		fmt.Printf("\n%s Initialized stride\n\n", green("✓"))
		fmt.Printf("  Database: %s\n", cyan(appCfg.DBPath))
		fmt.Printf("  Config:   %s\n", cyan(cfgFile))
		fmt.Println()
		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray(`stride goal new "Learn conversational Spanish" --ai`))
		fmt.Printf("  %s\n", gray("stride today"))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
