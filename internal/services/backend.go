// Persona backend API client
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	authConfigPath = "/api/auth/google-config"
	exchangePath   = "/api/auth/google"
	chatsPath      = "/api/chats/"
	messagesPath   = "/api/ai/chat"

	// APIKeyHeader carries the user's capability key on message calls.
	APIKeyHeader = "X-Groq-API-Key"
)

// BackendService implements [Backend] against the Persona backend's JSON API.
type BackendService struct {
	baseURL    string
	httpClient *http.Client
}

var _ Backend = (*BackendService)(nil)

// NewBackendService creates a new backend client.
func NewBackendService(baseURL string, client *http.Client) *BackendService {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &BackendService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// doJSON performs a request with an optional JSON body and decodes a JSON
// response into result. Non-2xx statuses return an [*APIError] with the
// backend's detail message when present; transport failures return the
// underlying error unwrapped into no particular type.
func (b *BackendService) doJSON(ctx context.Context, method, path string, headers map[string]string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AuthConfig fetches the Google OAuth client id from the backend.
func (b *BackendService) AuthConfig(ctx context.Context) (*AuthConfig, error) {
	var cfg AuthConfig
	if err := b.doJSON(ctx, http.MethodGet, authConfigPath, nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExchangeCode exchanges an authorization code for session credentials.
func (b *BackendService) ExchangeCode(ctx context.Context, code, state string) (*ExchangeResult, error) {
	payload := map[string]string{
		"authorization_code": code,
		"state":              state,
	}

	var result ExchangeResult
	if err := b.doJSON(ctx, http.MethodPost, exchangePath, nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExchangeTempToken exchanges a temporary token for session credentials.
// Same endpoint as [BackendService.ExchangeCode], different payload shape.
func (b *BackendService) ExchangeTempToken(ctx context.Context, tempToken string) (*ExchangeResult, error) {
	payload := map[string]string{
		"temp_token": tempToken,
	}

	var result ExchangeResult
	if err := b.doJSON(ctx, http.MethodPost, exchangePath, nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateChat creates a conversation resource owned by the authenticated user.
func (b *BackendService) CreateChat(ctx context.Context, accessToken, title string) (*ChatSession, error) {
	payload := map[string]string{"title": title}

	var session ChatSession
	if err := b.doJSON(ctx, http.MethodPost, chatsPath, bearer(accessToken), payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SendMessage sends one utterance to the assistant and returns its reply.
func (b *BackendService) SendMessage(ctx context.Context, accessToken, apiKey string, req *MessageRequest) (*MessageReply, error) {
	headers := bearer(accessToken)
	headers[APIKeyHeader] = apiKey

	var reply MessageReply
	if err := b.doJSON(ctx, http.MethodPost, messagesPath, headers, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
