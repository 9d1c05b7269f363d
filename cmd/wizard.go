package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/soconhq/socon/internal/repositories"
	"github.com/soconhq/socon/internal/shared"
	"github.com/soconhq/socon/internal/wizard"
	"github.com/urfave/cli/v3"
)

// Wizard launches the interactive connection wizard.
func (r *Runner) Wizard(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/socon-wizard.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	machine := wizard.NewConnectFlow()
	model := wizard.NewModel(ctx, machine, r.controller, r.finishWizard)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running wizard: %w", err)
	}

	if machine.Finalized() {
		r.writePlain("✓ Connected as @%s on %s\n", machine.Get(wizard.FieldReviewUsername), machine.Get(wizard.FieldPlatform))
	}

	return nil
}

// finishWizard persists the wizard's result: the connected status lands in
// the local cache so `status --cached` reflects it immediately.
func (r *Runner) finishWizard(data wizard.Data) error {
	platform := data[wizard.FieldPlatform]
	status := r.store.Status(platform)
	if !status.Connected {
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, platform)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewConnectionRepository(db)
	return repo.SaveStatus(status)
}

// SetLogger swaps the Runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}
