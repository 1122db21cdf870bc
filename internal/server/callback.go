package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// CallbackPath is the route the identity provider redirects back to.
const CallbackPath = "/oauth2callback"

// CallbackResult carries the raw redirect parameters delivered by the
// identity provider. At most one of Code/TempToken/ErrParam is meaningful;
// the auth bootstrap decides which in its documented priority order.
type CallbackResult struct {
	Code      string
	State     string
	TempToken string
	ErrParam  string
}

// CallbackHandler captures a single OAuth redirect.
// Implements [http.Handler] for registration with a mux.
type CallbackHandler struct {
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler that delivers exactly one [CallbackResult].
func NewCallbackHandler() *CallbackHandler {
	return &CallbackHandler{
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPath}
}

// ServeHTTP handles the redirect request.
//
// Captures the query parameters without interpreting them and renders a
// completion page. Repeat hits are rejected.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	result := CallbackResult{
		Code:      q.Get("code"),
		State:     q.Get("state"),
		TempToken: q.Get("temp_token"),
		ErrParam:  q.Get("error"),
	}

	h.Send(result)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Persona</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #111; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Sign-in received</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send delivers the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving redirect completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// Listen binds addr and serves the handler until a redirect arrives or ctx is
// cancelled, then shuts the server down. Returns the captured result.
func Listen(ctx context.Context, addr string, h *CallbackHandler) (CallbackResult, error) {
	mux := http.NewServeMux()
	mux.Handle(CallbackPath, h)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("failed to bind callback address %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-h.Result():
		return result, nil
	case err := <-errChan:
		return CallbackResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}
}
