// Package apikey gates assistant features on a user-supplied Groq capability key.
//
// The key has its own lifecycle, separate from session credentials: removing
// it disables the message exchange cycle but never invalidates the session.
package apikey

import (
	"context"
	"fmt"
	"strings"

	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
)

// RequiredPrefix is the namespace every Groq key starts with.
const RequiredPrefix = "gsk_"

// Gate validates, stores, and reports on the capability key.
type Gate struct {
	store     models.SessionStore
	validator services.KeyValidator
}

// NewGate creates a Gate over the given store and remote validator.
func NewGate(store models.SessionStore, validator services.KeyValidator) *Gate {
	return &Gate{store: store, validator: validator}
}

// Validate checks the key and persists it on success. Empty or wrongly
// prefixed keys fail fast without any network call; otherwise one remote
// capability check decides, and only a passing key is stored.
func (g *Gate) Validate(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.ErrKeyRequired
	}
	if !strings.HasPrefix(key, RequiredPrefix) {
		return fmt.Errorf("%w: keys should start with %q", shared.ErrKeyFormat, RequiredPrefix)
	}

	if err := g.validator.ValidateKey(ctx, key); err != nil {
		return err
	}

	if err := g.store.Set(models.KeyGroqAPIKey, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	return nil
}

// IsPresent reports whether a validated key is stored. Pure read; every
// consumer gates feature availability on this.
func (g *Gate) IsPresent() bool {
	key, err := g.store.Get(models.KeyGroqAPIKey)
	return err == nil && key != ""
}

// Current returns the stored key, or "" when absent.
func (g *Gate) Current() string {
	key, _ := g.store.Get(models.KeyGroqAPIKey)
	return key
}

// Masked returns a displayable form of the stored key: prefix plus last four
// characters. Returns "" when no key is stored.
func (g *Gate) Masked() string {
	key := g.Current()
	if key == "" {
		return ""
	}
	if len(key) <= len(RequiredPrefix)+4 {
		return RequiredPrefix + "..."
	}
	return fmt.Sprintf("%s...%s", RequiredPrefix, key[len(key)-4:])
}

// Remove deletes the key from the store. Session credentials are untouched.
func (g *Gate) Remove() error {
	return g.store.Delete(models.KeyGroqAPIKey)
}
