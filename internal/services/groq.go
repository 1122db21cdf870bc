// Groq API client used only to test whether a capability key is accepted
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/personai/persona/internal/shared"
	"golang.org/x/time/rate"
)

const groqModelsPath = "/openai/v1/models"

// GroqService implements [KeyValidator] by listing models with the candidate
// key as bearer credential. Only the HTTP status matters; the body is ignored.
//
// Validation attempts are throttled locally so a user retyping a bad key does
// not hammer the remote service.
type GroqService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ KeyValidator = (*GroqService)(nil)

// NewGroqService creates a new Groq validation client.
func NewGroqService(baseURL string, client *http.Client) *GroqService {
	if baseURL == "" {
		baseURL = "https://api.groq.com"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &GroqService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
	}
}

// ValidateKey performs the single remote capability check. A 2xx status means
// the key is usable; any other status or a transport failure is a rejection.
func (g *GroqService) ValidateKey(ctx context.Context, key string) error {
	if !g.limiter.Allow() {
		return shared.ErrKeyThrottled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+groqModelsPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrKeyRejected, resp.StatusCode)
	}

	return nil
}
