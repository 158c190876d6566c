package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/drivebox/internal/shared"
	"github.com/desertthunder/drivebox/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive remote file browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	fileLogger, err := shared.NewFileLogger("./tmp/drivebox-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	storage, err := r.ensureStorage()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, storage, cmd.String("output-dir"))
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
