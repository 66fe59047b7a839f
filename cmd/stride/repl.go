package main

import (
	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell for quick check-ins and streak checks
without re-running the binary for every command.

Type 'help' in the shell for available commands.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := repl.New(&repl.Config{Store: store, Manager: mgr})
		if err != nil {
			fail(err)
		}
		if err := r.Run(cmd.Context()); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
