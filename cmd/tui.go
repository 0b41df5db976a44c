package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lunamoth/cadenza/internal/shared"
	"github.com/lunamoth/cadenza/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for metadata sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.entryRepo()
	if err != nil {
		return err
	}
	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/cadenza-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, repo, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
