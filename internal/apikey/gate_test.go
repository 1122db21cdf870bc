package apikey

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/shared"
	tu "github.com/personai/persona/internal/testing"
)

func TestGate(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		t.Run("Empty Key", func(t *testing.T) {
			validator := &tu.MockValidator{}
			gate := NewGate(tu.NewMemStore(), validator)

			err := gate.Validate(context.Background(), "   ")
			if !errors.Is(err, shared.ErrKeyRequired) {
				t.Errorf("expected ErrKeyRequired, got %v", err)
			}
			if validator.Calls != 0 {
				t.Error("expected no remote call for an empty key")
			}
		})

		t.Run("Wrong Prefix Fails Without Network", func(t *testing.T) {
			validator := &tu.MockValidator{}
			store := tu.NewMemStore()
			gate := NewGate(store, validator)

			err := gate.Validate(context.Background(), "bad_key")
			if !errors.Is(err, shared.ErrKeyFormat) {
				t.Errorf("expected ErrKeyFormat, got %v", err)
			}
			if !strings.Contains(err.Error(), RequiredPrefix) {
				t.Errorf("expected error to name the prefix, got %v", err)
			}
			if validator.Calls != 0 {
				t.Error("expected no remote call for a malformed key")
			}
			if key, _ := store.Get(models.KeyGroqAPIKey); key != "" {
				t.Error("expected nothing persisted")
			}
		})

		t.Run("Rejected Key Is Not Persisted", func(t *testing.T) {
			validator := &tu.MockValidator{Err: shared.ErrKeyRejected}
			store := tu.NewMemStore()
			gate := NewGate(store, validator)

			err := gate.Validate(context.Background(), "gsk_rejected")
			if !errors.Is(err, shared.ErrKeyRejected) {
				t.Errorf("expected ErrKeyRejected, got %v", err)
			}
			if key, _ := store.Get(models.KeyGroqAPIKey); key != "" {
				t.Error("expected a rejected key to not be persisted")
			}
		})

		t.Run("Accepted Key Is Persisted", func(t *testing.T) {
			validator := &tu.MockValidator{}
			store := tu.NewMemStore()
			gate := NewGate(store, validator)

			if err := gate.Validate(context.Background(), "  gsk_abcdef1234  "); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if validator.Calls != 1 {
				t.Errorf("expected exactly one remote call, got %d", validator.Calls)
			}
			key, _ := store.Get(models.KeyGroqAPIKey)
			if key != "gsk_abcdef1234" {
				t.Errorf("expected trimmed key persisted, got %q", key)
			}
		})
	})

	t.Run("IsPresent", func(t *testing.T) {
		store := tu.NewMemStore()
		gate := NewGate(store, &tu.MockValidator{})

		if gate.IsPresent() {
			t.Error("expected no key initially")
		}
		store.Set(models.KeyGroqAPIKey, "gsk_stored")
		if !gate.IsPresent() {
			t.Error("expected a stored key to be present")
		}
	})

	t.Run("Masked", func(t *testing.T) {
		store := tu.NewMemStore()
		gate := NewGate(store, &tu.MockValidator{})

		if gate.Masked() != "" {
			t.Error("expected empty mask for no key")
		}

		store.Set(models.KeyGroqAPIKey, "gsk_abcdef1234")
		masked := gate.Masked()
		if masked != "gsk_...1234" {
			t.Errorf("expected 'gsk_...1234', got %q", masked)
		}
		if strings.Contains(masked, "abcdef") {
			t.Error("expected the key body to be hidden")
		}

		store.Set(models.KeyGroqAPIKey, "gsk_ab")
		if gate.Masked() != "gsk_..." {
			t.Errorf("expected short keys fully masked, got %q", gate.Masked())
		}
	})

	t.Run("Remove Leaves Session Credentials", func(t *testing.T) {
		store := tu.NewMemStore()
		store.Set(models.KeyAccessToken, "t1")
		store.Set(models.KeyGroqAPIKey, "gsk_stored")
		gate := NewGate(store, &tu.MockValidator{})

		if err := gate.Remove(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gate.IsPresent() {
			t.Error("expected the key to be removed")
		}
		if token, _ := store.Get(models.KeyAccessToken); token != "t1" {
			t.Error("expected session credentials untouched")
		}
	})
}
