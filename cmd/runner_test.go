package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
	tu "github.com/personai/persona/internal/testing"
	"github.com/urfave/cli/v3"
)

// runCommand wires a Runner into a CLI app and runs one invocation against it.
func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "persona", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"persona"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			backend := &tu.MockBackend{}
			groq := &tu.MockValidator{}
			store := tu.NewMemStore()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Backend:    backend,
				Groq:       groq,
				Store:      store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.backend != services.Backend(backend) {
				t.Error("expected backend to be set")
			}
			if runner.groq != services.KeyValidator(groq) {
				t.Error("expected groq validator to be set")
			}
			if runner.store != models.SessionStore(store) {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requireStore", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if _, err := runner.requireStore(); err == nil {
			t.Error("expected an error without a store")
		}

		runner = NewRunner(RunnerOpts{Store: tu.NewMemStore()})
		if _, err := runner.requireStore(); err != nil {
			t.Errorf("expected no error with a store, got %v", err)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Fatal("expected error for non-serializable data")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		if err := NewRunner(RunnerOpts{Output: &tu.FWriter{}}).writePlain("test"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestStatusCommand(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: tu.NewMemStore()})

		if err := runCommand(t, runner, "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not signed in") {
			t.Errorf("expected not-signed-in message, got %q", output.String())
		}
	})

	t.Run("signed in without api key", func(t *testing.T) {
		store := tu.NewMemStore()
		store.Set(models.KeyAccessToken, "t1")
		encoded, _ := models.EncodeUser(models.User{Name: "Ada", Email: "ada@example.com"})
		store.Set(models.KeyUser, encoded)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: store})

		if err := runCommand(t, runner, "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "Ada") {
			t.Errorf("expected user name, got %q", result)
		}
		if !strings.Contains(result, "API key: missing") {
			t.Errorf("expected missing key notice, got %q", result)
		}
	})

	t.Run("json output never includes secrets", func(t *testing.T) {
		store := tu.NewMemStore()
		store.Set(models.KeyAccessToken, "secret-token")
		store.Set(models.KeyGroqAPIKey, "gsk_secret")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: store})

		if err := runCommand(t, runner, "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if strings.Contains(result, "secret-token") || strings.Contains(result, "gsk_secret") {
			t.Errorf("expected no secrets in output, got %q", result)
		}
		if !strings.Contains(result, `"authenticated": true`) {
			t.Errorf("expected authenticated flag, got %q", result)
		}
	})
}

func TestLogoutCommand(t *testing.T) {
	store := tu.NewMemStore()
	for _, key := range models.StoreKeys {
		store.Set(key, "value")
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Store: store})

	if err := runCommand(t, runner, "logout"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, key := range models.StoreKeys {
		if value, _ := store.Get(key); value != "" {
			t.Errorf("expected %s cleared, got %q", key, value)
		}
	}
	if !strings.Contains(output.String(), "Signed out") {
		t.Errorf("expected sign-out confirmation, got %q", output.String())
	}
}

func TestKeyCommand(t *testing.T) {
	t.Run("set rejects malformed key without network", func(t *testing.T) {
		validator := &tu.MockValidator{}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: tu.NewMemStore(), Groq: validator})

		if err := runCommand(t, runner, "key", "set", "bad_key"); err == nil {
			t.Error("expected an error for a malformed key")
		}
		if validator.Calls != 0 {
			t.Error("expected no validation call for a malformed key")
		}
		if !strings.Contains(output.String(), "gsk_") {
			t.Errorf("expected the expected prefix named, got %q", output.String())
		}
	})

	t.Run("set stores an accepted key", func(t *testing.T) {
		store := tu.NewMemStore()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: store, Groq: &tu.MockValidator{}})

		if err := runCommand(t, runner, "key", "set", "gsk_abcdef1234"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if key, _ := store.Get(models.KeyGroqAPIKey); key != "gsk_abcdef1234" {
			t.Errorf("expected the key persisted, got %q", key)
		}
		if !strings.Contains(output.String(), "valid and ready to use") {
			t.Errorf("expected the success message, got %q", output.String())
		}
	})

	t.Run("set rejects a refused key", func(t *testing.T) {
		store := tu.NewMemStore()
		runner := NewRunner(RunnerOpts{
			Output: &bytes.Buffer{},
			Store:  store,
			Groq:   &tu.MockValidator{Err: shared.ErrKeyRejected},
		})

		if err := runCommand(t, runner, "key", "set", "gsk_refused"); err == nil {
			t.Error("expected an error for a refused key")
		}
		if key, _ := store.Get(models.KeyGroqAPIKey); key != "" {
			t.Error("expected nothing persisted")
		}
	})

	t.Run("status masks the key", func(t *testing.T) {
		store := tu.NewMemStore()
		store.Set(models.KeyGroqAPIKey, "gsk_abcdef1234")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Store: store, Groq: &tu.MockValidator{}})

		if err := runCommand(t, runner, "key", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "gsk_...1234") {
			t.Errorf("expected the masked key, got %q", result)
		}
		if strings.Contains(result, "abcdef") {
			t.Errorf("expected the key body hidden, got %q", result)
		}
	})

	t.Run("remove deletes only the key", func(t *testing.T) {
		store := tu.NewMemStore()
		store.Set(models.KeyAccessToken, "t1")
		store.Set(models.KeyGroqAPIKey, "gsk_stored")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Store: store, Groq: &tu.MockValidator{}})

		if err := runCommand(t, runner, "key", "remove"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if key, _ := store.Get(models.KeyGroqAPIKey); key != "" {
			t.Error("expected the key removed")
		}
		if token, _ := store.Get(models.KeyAccessToken); token != "t1" {
			t.Error("expected session credentials untouched")
		}
	})
}
