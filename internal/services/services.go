// package services defines interfaces for the remote APIs the client consumes
package services

import (
	"context"
	"fmt"

	"github.com/personai/persona/internal/models"
)

// Backend defines the Persona backend API surface consumed by the client.
type Backend interface {
	// AuthConfig fetches the identity-provider client configuration.
	// Login is disabled when this call fails; no fallback identifier is invented.
	AuthConfig(ctx context.Context) (*AuthConfig, error)

	// ExchangeCode exchanges an authorization code (plus optional anti-forgery
	// state) for session credentials. Primary exchange path.
	ExchangeCode(ctx context.Context, code, state string) (*ExchangeResult, error)

	// ExchangeTempToken exchanges a temporary token issued by the alternate
	// flow on the same endpoint with a different payload shape.
	ExchangeTempToken(ctx context.Context, tempToken string) (*ExchangeResult, error)

	// CreateChat creates a conversation resource and returns its backend-issued id.
	CreateChat(ctx context.Context, accessToken, title string) (*ChatSession, error)

	// SendMessage sends one utterance and returns the assistant reply.
	// The capability key travels in a dedicated header, not the body.
	SendMessage(ctx context.Context, accessToken, apiKey string, req *MessageRequest) (*MessageReply, error)
}

// KeyValidator checks a capability key against its issuing service.
type KeyValidator interface {
	ValidateKey(ctx context.Context, key string) error
}

// AuthConfig is the identity-provider client configuration served by the backend.
type AuthConfig struct {
	ClientID string `json:"client_id"`
}

// ExchangeResult is the backend's response to a successful credential exchange.
type ExchangeResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         models.User `json:"user"`
}

// ChatSession is the backend's representation of a conversation resource.
type ChatSession struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// MessageRequest is the body of a message send call.
type MessageRequest struct {
	Message string         `json:"message"`
	ChatID  string         `json:"chat_id"`
	Context map[string]any `json:"context"`
}

// MessageReply is the backend's response to a message send call.
type MessageReply struct {
	MessageID string `json:"message_id"`
	Response  string `json:"response"`
}

// APIError represents an HTTP-level rejection from a remote service, carrying
// the backend-provided detail message when one was present in the body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}
