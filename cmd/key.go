package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/personai/persona/internal/apikey"
	"github.com/personai/persona/internal/shared"
	"github.com/urfave/cli/v3"
)

// keyCommand manages the Groq API key that unlocks conversation features.
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the Groq API key",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Validate and store an API key",
				ArgsUsage: "<key>",
				Action:    r.KeySet,
			},
			{
				Name:   "status",
				Usage:  "Show whether an API key is stored",
				Action: r.KeyStatus,
			},
			{
				Name:   "remove",
				Usage:  "Remove the stored API key",
				Action: r.KeyRemove,
			},
		},
	}
}

func (r *Runner) gate() (*apikey.Gate, error) {
	store, err := r.requireStore()
	if err != nil {
		return nil, err
	}
	return apikey.NewGate(store, r.groq), nil
}

// KeySet validates a candidate key against the provider and stores it on
// success. Rejected keys are never persisted.
func (r *Runner) KeySet(ctx context.Context, cmd *cli.Command) error {
	gate, err := r.gate()
	if err != nil {
		return err
	}

	key := strings.TrimSpace(cmd.Args().First())
	if key == "" {
		return fmt.Errorf("%w: usage: persona key set <key>", shared.ErrMissingArgument)
	}

	r.writePlain("Validating API key...\n")
	if err := gate.Validate(ctx, key); err != nil {
		switch {
		case errors.Is(err, shared.ErrKeyFormat):
			r.writePlain("✗ Invalid API key format. Groq keys start with %q.\n", apikey.RequiredPrefix)
		case errors.Is(err, shared.ErrKeyRejected):
			r.writePlain("✗ Invalid API key. Please check your key and try again.\n")
		case errors.Is(err, shared.ErrKeyThrottled):
			r.writePlain("✗ Too many validation attempts. Please wait a moment and try again.\n")
		default:
			r.writePlain("✗ Could not validate the key: network error.\n")
		}
		return err
	}

	r.writePlain("✓ API key is valid and ready to use!\n")
	return nil
}

// KeyStatus prints the masked key, never the full value.
func (r *Runner) KeyStatus(ctx context.Context, cmd *cli.Command) error {
	gate, err := r.gate()
	if err != nil {
		return err
	}

	if !gate.IsPresent() {
		r.writePlain("No API key stored. Run 'persona key set <key>'.\n")
		return nil
	}

	r.writePlain("API key: %s\n", gate.Masked())
	return nil
}

// KeyRemove deletes the stored key. Other session state is untouched.
func (r *Runner) KeyRemove(ctx context.Context, cmd *cli.Command) error {
	gate, err := r.gate()
	if err != nil {
		return err
	}

	if err := gate.Remove(); err != nil {
		return fmt.Errorf("failed to remove API key: %w", err)
	}

	r.writePlain("✓ API key removed\n")
	return nil
}
