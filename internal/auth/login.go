package auth

import (
	"context"
	"fmt"

	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
	"golang.org/x/oauth2"
)

// Scopes requested from Google: identity plus the Workspace surfaces the
// assistant operates on (calendar, mail read/send, tasks).
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/tasks",
}

// Initiator constructs the authorization request and sends the user agent to
// it. The provider client id always comes from the backend; when that fetch
// fails, login stays disabled rather than inventing a default identifier.
type Initiator struct {
	backend     services.Backend
	store       models.SessionStore
	authURL     string
	redirectURL string
	open        func(string) error
}

// InitiatorOpts contains configuration options for creating an Initiator.
type InitiatorOpts struct {
	Backend     services.Backend
	Store       models.SessionStore
	AuthURL     string
	RedirectURL string
	Open        func(string) error // browser navigation, swappable in tests
}

// NewInitiator creates an Initiator with defaults for unset options.
func NewInitiator(opts InitiatorOpts) *Initiator {
	if opts.AuthURL == "" {
		opts.AuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	return &Initiator{
		backend:     opts.Backend,
		store:       opts.Store,
		authURL:     opts.AuthURL,
		redirectURL: opts.RedirectURL,
		open:        opts.Open,
	}
}

// Authenticated reports whether an access credential is already stored.
// Login short-circuits when one exists.
func (i *Initiator) Authenticated() bool {
	token, err := i.store.Get(models.KeyAccessToken)
	return err == nil && token != ""
}

// Prepare fetches the provider client configuration from the backend.
// A failure here is a configuration error: login is disabled, nothing is retried.
func (i *Initiator) Prepare(ctx context.Context) (string, error) {
	cfg, err := i.backend.AuthConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthNotReady, err)
	}
	if cfg.ClientID == "" {
		return "", fmt.Errorf("%w: backend returned empty client id", shared.ErrAuthNotReady)
	}
	return cfg.ClientID, nil
}

// AuthCodeURL builds the authorization request URL: authorization-code
// response type, offline access, and a prompt policy that forces account
// selection.
func (i *Initiator) AuthCodeURL(clientID, state string) string {
	cfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: i.redirectURL,
		Scopes:      Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: i.authURL},
	}

	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account consent"),
	)
}

// BeginLogin fetches the client configuration, builds the authorization URL,
// and navigates the user agent to it. Returns the URL so callers can print it
// when the browser cannot be opened automatically.
func (i *Initiator) BeginLogin(ctx context.Context, state string) (string, error) {
	clientID, err := i.Prepare(ctx)
	if err != nil {
		return "", err
	}

	url := i.AuthCodeURL(clientID, state)
	if err := i.open(url); err != nil {
		return url, fmt.Errorf("failed to open browser: %w", err)
	}

	return url, nil
}
