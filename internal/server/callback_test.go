package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("Captures Redirect Parameters", func(t *testing.T) {
		h := NewCallbackHandler()
		req := httptest.NewRequest(http.MethodGet, CallbackPath+"?code=abc123&state=xyz", nil)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Sign-in received") {
			t.Error("expected the completion page to be rendered")
		}

		select {
		case result := <-h.Result():
			if result.Code != "abc123" {
				t.Errorf("expected code 'abc123', got %q", result.Code)
			}
			if result.State != "xyz" {
				t.Errorf("expected state 'xyz', got %q", result.State)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a result to be delivered")
		}
	})

	t.Run("Captures Provider Error Without Interpreting", func(t *testing.T) {
		h := NewCallbackHandler()
		req := httptest.NewRequest(http.MethodGet, CallbackPath+"?error=access_denied", nil)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200 even on provider error, got %d", w.Code)
		}

		result := <-h.Result()
		if result.ErrParam != "access_denied" {
			t.Errorf("expected error param captured, got %q", result.ErrParam)
		}
	})

	t.Run("Captures Temp Token", func(t *testing.T) {
		h := NewCallbackHandler()
		req := httptest.NewRequest(http.MethodGet, CallbackPath+"?temp_token=tmp42", nil)

		h.ServeHTTP(httptest.NewRecorder(), req)

		result := <-h.Result()
		if result.TempToken != "tmp42" {
			t.Errorf("expected temp token captured, got %q", result.TempToken)
		}
	})

	t.Run("Rejects Repeat Hits", func(t *testing.T) {
		h := NewCallbackHandler()

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, CallbackPath+"?code=first", nil))

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, CallbackPath+"?code=second", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 on repeat hit, got %d", second.Code)
		}

		result := <-h.Result()
		if result.Code != "first" {
			t.Errorf("expected the first result to win, got %q", result.Code)
		}
	})

	t.Run("Send Delivers Once", func(t *testing.T) {
		h := NewCallbackHandler()

		h.Send(CallbackResult{Code: "one"})
		h.Send(CallbackResult{Code: "two"})

		result, ok := <-h.Result()
		if !ok {
			t.Fatal("expected a delivered result")
		}
		if result.Code != "one" {
			t.Errorf("expected first send to win, got %q", result.Code)
		}

		if _, ok := <-h.Result(); ok {
			t.Error("expected the channel to be closed after delivery")
		}
	})

	t.Run("Routes", func(t *testing.T) {
		h := NewCallbackHandler()
		routes := h.Routes()
		if len(routes) != 1 || routes[0] != CallbackPath {
			t.Errorf("expected [%s], got %v", CallbackPath, routes)
		}
	})
}

func TestListen(t *testing.T) {
	t.Run("Returns Result From Redirect", func(t *testing.T) {
		h := NewCallbackHandler()
		done := make(chan struct{})

		var result CallbackResult
		var listenErr error
		go func() {
			result, listenErr = Listen(context.Background(), "127.0.0.1:0", h)
			close(done)
		}()

		// The listener owns the port; deliver directly through the handler.
		h.Send(CallbackResult{Code: "abc"})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("expected Listen to return after delivery")
		}
		if listenErr != nil {
			t.Fatalf("expected no error, got %v", listenErr)
		}
		if result.Code != "abc" {
			t.Errorf("expected code 'abc', got %q", result.Code)
		}
	})

	t.Run("Cancellation Stops The Server", func(t *testing.T) {
		h := NewCallbackHandler()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Listen(ctx, "127.0.0.1:0", h)
		if err == nil {
			t.Error("expected a context error after cancellation")
		}
	})

	t.Run("Bind Failure Is Reported", func(t *testing.T) {
		h := NewCallbackHandler()

		_, err := Listen(context.Background(), "256.0.0.1:99999", h)
		if err == nil {
			t.Error("expected an error for an unbindable address")
		}
	})
}
