package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/qbx/internal/shared"
	"github.com/desertthunder/qbx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/qbx-tui.log"

// TUI launches the interactive terminal browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not interfere with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	shared.SetLogLevel(fileLogger, r.config.LogLevel())
	r.logger = fileLogger

	s, err := r.open(sessionOpts{catalog: true, lock: true})
	if err != nil {
		return err
	}
	defer s.Close()

	model := ui.NewModel(ctx, s.store, s.engine)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
