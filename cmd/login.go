package main

import (
	"context"
	"fmt"

	"github.com/personai/persona/internal/auth"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/server"
	"github.com/personai/persona/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginCommand starts the Google sign-in flow.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with Google",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Start a new sign-in even when already authenticated",
			},
			&cli.BoolFlag{
				Name:  "no-chat",
				Usage: "Do not open the chat surface after signing in",
			},
		},
		Action: r.Login,
	}
}

// logoutCommand clears the local session.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and clear stored credentials",
		Action: r.Logout,
	}
}

// statusCommand reports the local session state.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show authentication and API key status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: r.Status,
	}
}

// Login runs the full sign-in flow: fetch provider configuration, open the
// browser, receive the redirect on the loopback server, and drive the auth
// bootstrap until it resolves.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	store, err := r.requireStore()
	if err != nil {
		return err
	}

	initiator := auth.NewInitiator(auth.InitiatorOpts{
		Backend:     r.backend,
		Store:       store,
		AuthURL:     r.config.OAuth.AuthURL,
		RedirectURL: r.config.OAuth.RedirectURL(),
	})

	if initiator.Authenticated() && !cmd.Bool("force") {
		r.writePlain("Already signed in. Use --force to start a new sign-in, or 'persona logout' first.\n")
		return nil
	}

	// Bind the callback server before sending the user agent to the provider.
	handler := server.NewCallbackHandler()
	type listenOut struct {
		result server.CallbackResult
		err    error
	}
	resultChan := make(chan listenOut, 1)
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		result, err := server.Listen(listenCtx, r.config.OAuth.ListenAddr(), handler)
		resultChan <- listenOut{result, err}
	}()

	state := shared.GenerateID()
	url, err := initiator.BeginLogin(ctx, state)
	if err != nil {
		if url == "" {
			return err
		}
		// Browser navigation failed but the flow can continue by hand.
		r.logger.Warn("could not open browser", "error", err)
		r.writePlain("Open this URL to sign in:\n%s\n", url)
	}

	r.writePlain("Waiting for Google sign-in to complete in your browser...\n")

	out := <-resultChan
	if out.err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, out.err)
	}

	bootstrap := auth.NewBootstrap(auth.BootstrapOpts{
		Backend: r.backend,
		Store:   store,
		Logger:  r.logger,
	})

	var final auth.State
	advance := false
	lastMessage := ""
	for update := range bootstrap.Run(ctx, out.result) {
		final = update.State
		if update.Advance {
			advance = true
		}
		if update.State.Message != lastMessage {
			lastMessage = update.State.Message
			r.logger.Info(update.State.Message, "progress", fmt.Sprintf("%.0f%%", update.State.Progress))
		}
	}

	switch final.Phase {
	case auth.Success:
		r.writePlain("✓ Welcome, %s!\n", final.User.DisplayName())
	case auth.Error:
		r.writePlain("✗ Authentication failed: %s\n", final.Message)
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, final.Message)
	}

	if advance && !cmd.Bool("no-chat") {
		return r.runChat(ctx)
	}
	return nil
}

// Logout clears every session store key.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.requireStore()
	if err != nil {
		return err
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.writePlain("✓ Signed out\n")
	return nil
}

// Status reports which credentials are present without printing secrets.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	store, err := r.requireStore()
	if err != nil {
		return err
	}

	token, _ := store.Get(models.KeyAccessToken)
	refresh, _ := store.Get(models.KeyRefreshToken)
	rawUser, _ := store.Get(models.KeyUser)
	apiKey, _ := store.Get(models.KeyGroqAPIKey)

	var user models.User
	if rawUser != "" {
		if decoded, err := models.DecodeUser(rawUser); err == nil {
			user = decoded
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": token != "",
			"refresh_token": refresh != "",
			"user":          user,
			"api_key":       apiKey != "",
		}, true)
	}

	if token == "" {
		r.writePlain("Not signed in. Run 'persona login' to get started.\n")
		return nil
	}

	r.writePlain("Signed in as: %s <%s>\n", user.Name, user.Email)
	if refresh != "" {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: absent\n")
	}
	if apiKey != "" {
		r.writePlain("API key: active\n")
	} else {
		r.writePlain("API key: missing (run 'persona key set')\n")
	}

	return nil
}
