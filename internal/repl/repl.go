// Package repl is the interactive shell. It wraps the planner manager
// so a user can check in, watch streaks, and browse goals without
// re-running the binary for every command.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/goalstride/stride/internal/planner"
	"github.com/goalstride/stride/internal/storage"
	"github.com/goalstride/stride/internal/types"
)

// REPL is the interactive shell state.
type REPL struct {
	store    storage.Storage
	mgr      *planner.Manager
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command.
type CommandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Store   storage.Storage
	Manager *planner.Manager
}

// New creates a REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}

	r := &REPL{
		store:    cfg.Store,
		mgr:      cfg.Manager,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("stride> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nKeep your streak going!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if handler, ok := r.commands[parts[0]]; ok {
		return handler(parts[1:])
	}
	return fmt.Errorf("unknown command %q, type 'help' for the list", parts[0])
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["goals"] = r.cmdGoals
	r.commands["show"] = r.cmdShow
	r.commands["checkin"] = r.cmdCheckIn
	r.commands["undo"] = r.cmdUndo
	r.commands["streak"] = r.cmdStreak
	r.commands["quote"] = r.cmdQuote
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("stride interactive shell"))
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"goals", "List all goals"},
		{"show <goal-id>", "Show a goal's plan"},
		{"checkin <step-id> [note...]", "Record today's check-in"},
		{"undo <step-id>", "Remove today's check-in"},
		{"streak <step-id>", "Show streak numbers"},
		{"quote", "A short motivational line"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-30s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

func (r *REPL) cmdGoals(args []string) error {
	goals, err := r.store.ListGoals(r.ctx)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Println("No goals yet.")
		return nil
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, g := range goals {
		fmt.Printf("%s  %s\n", cyan(g.ID), g.Title)
	}
	return nil
}

func (r *REPL) cmdShow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <goal-id>")
	}
	goal, err := r.store.GetGoal(r.ctx, args[0])
	if err != nil {
		return err
	}
	steps, err := r.store.ListSteps(r.ctx, goal.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", goal.Title)
	for _, s := range steps {
		box := "[ ]"
		if s.Done {
			box = "[x]"
		}
		fmt.Printf("  %s %s  %s", box, s.ID, s.Title)
		if s.DueDate != nil {
			fmt.Printf("  (due %s)", s.DueDate)
		}
		fmt.Println()
	}
	return nil
}

func (r *REPL) cmdCheckIn(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: checkin <step-id> [note...]")
	}
	note := strings.Join(args[1:], " ")

	snap, changed, err := r.mgr.CheckIn(r.ctx, args[0], nil, note)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	if changed {
		fmt.Printf("%s Checked in. Current streak: %d day(s)\n", green("✓"), snap.Current)
	} else {
		fmt.Printf("Already checked in today. Current streak: %d day(s)\n", snap.Current)
	}

	if quote := r.mgr.Quote(r.ctx); quote != "" {
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("  %s\n", gray(quote))
	}
	return nil
}

func (r *REPL) cmdUndo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: undo <step-id>")
	}
	snap, changed, err := r.mgr.UndoCheckIn(r.ctx, args[0], nil)
	if err != nil {
		return err
	}
	if changed {
		fmt.Printf("Check-in removed. Current streak: %d day(s)\n", snap.Current)
	} else {
		fmt.Println("No check-in recorded today.")
	}
	return nil
}

func (r *REPL) cmdStreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: streak <step-id>")
	}
	snap, err := r.mgr.Snapshot(r.ctx, args[0])
	if err != nil {
		return err
	}
	printSnapshot(snap)
	return nil
}

func (r *REPL) cmdQuote(args []string) error {
	quote := r.mgr.Quote(r.ctx)
	if quote == "" {
		return fmt.Errorf("quotes need an API key (set ANTHROPIC_API_KEY)")
	}
	fmt.Println(quote)
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Keep your streak going!\n", green("✓"))
	r.rl.Close()
	return io.EOF
}

func printSnapshot(snap types.StreakSnapshot) {
	fmt.Printf("  Current streak: %d day(s)\n", snap.Current)
	fmt.Printf("  Longest streak: %d day(s)\n", snap.Longest)
	fmt.Printf("  Total check-ins: %d\n", snap.Total)
	fmt.Printf("  Consistency: %.0f%%\n", snap.CompletionRatio*100)
	if snap.LastCheckIn != nil {
		fmt.Printf("  Last check-in: %s\n", snap.LastCheckIn)
	}
}
