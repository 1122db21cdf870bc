// package models defines the data model for the Persona terminal client
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Session store keys. Scoped per component: the auth bootstrap owns the first
// three, the capability key gate owns the last. All four are cleared together
// on sign-out.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyGroqAPIKey   = "groq_api_key"
)

// StoreKeys lists every key the client persists, in sign-out clearing order.
var StoreKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser, KeyGroqAPIKey}

// SessionStore defines the persistent key/value state shared across the
// client's surfaces. Implementations must treat absent keys as empty values,
// not errors.
type SessionStore interface {
	Get(key string) (string, error)   // Get returns the stored value, or "" when absent
	Set(key, value string) error      // Set inserts or replaces the value for key
	Delete(key string) error          // Delete removes the key; absent keys are a no-op
	Clear() error                     // Clear removes every key (sign-out)
}

// Credentials holds the session credentials issued by the backend's exchange endpoint.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// User is the informational identity record returned alongside credentials.
// Never mutated after creation within a session.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName returns the best available label for the user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// EncodeUser serializes a user for the session store.
func EncodeUser(u User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("failed to encode user: %w", err)
	}
	return string(data), nil
}

// DecodeUser deserializes a user from the session store.
func DecodeUser(raw string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return u, nil
}

// Role attributes a conversation turn to its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns a human-readable label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Persona"
	default:
		return string(r)
	}
}

// Session is the logical conversation identifier correlating a sequence of
// turns. Degraded marks a locally-synthesized fallback id the backend has
// never seen; callers treat both variants identically, the flag exists so
// tests and diagnostics can tell them apart.
type Session struct {
	ID       string
	Degraded bool
}

// Turn is one message in a conversation. Turns are append-only and held in
// memory for the lifetime of a single chat activation.
type Turn struct {
	ID        string
	Content   string
	Role      Role
	Timestamp time.Time
}

// Validate checks the turn for structural problems.
func (t Turn) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("turn id is empty")
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("turn content is empty")
	}
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return fmt.Errorf("unknown role: %s", t.Role)
	}
	return nil
}
