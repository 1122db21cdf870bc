package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/personai/persona/internal/apikey"
	"github.com/personai/persona/internal/chat"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/shared"
	"github.com/personai/persona/internal/ui"
	"github.com/urfave/cli/v3"
)

// chatCommand opens the conversation TUI.
func chatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Open a conversation with the assistant",
		Action: r.Chat,
	}
}

func (r *Runner) Chat(ctx context.Context, cmd *cli.Command) error {
	return r.runChat(ctx)
}

// runChat builds the chat surface over the stored session. Authentication is
// required up front; the API key is not, since the TUI collects one when
// missing.
func (r *Runner) runChat(ctx context.Context) error {
	store, err := r.requireStore()
	if err != nil {
		return err
	}

	token, _ := store.Get(models.KeyAccessToken)
	if token == "" {
		return fmt.Errorf("%w: run 'persona login' first", shared.ErrNotAuthenticated)
	}

	var user models.User
	if raw, _ := store.Get(models.KeyUser); raw != "" {
		if decoded, err := models.DecodeUser(raw); err == nil {
			user = decoded
		}
	}

	logger, err := shared.NewFileLogger("./tmp/persona-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	model := ui.NewModel(ctx, ui.Opts{
		Gate: apikey.NewGate(store, r.groq),
		Manager: chat.NewManager(chat.ManagerOpts{
			Backend: r.backend,
			Store:   store,
			Logger:  logger,
		}),
		Backend: r.backend,
		Store:   store,
		User:    user,
		Logger:  logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session ended with an error: %w", err)
	}

	return nil
}
