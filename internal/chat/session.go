package chat

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
)

// DefaultTitle is the title given to backend-created conversation resources.
const DefaultTitle = "New Chat"

const fallbackAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Manager establishes one logical conversation session per chat activation.
type Manager struct {
	backend services.Backend
	store   models.SessionStore
	logger  *log.Logger
	now     func() time.Time
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	Backend services.Backend
	Store   models.SessionStore
	Logger  *log.Logger
	Now     func() time.Time
}

// NewManager creates a Manager with defaults for unset options.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		backend: opts.Backend,
		store:   opts.Store,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Open establishes the conversation session for this activation. One backend
// call; any failure silently falls back to a locally-synthesized correlation
// id, marked Degraded, with no retry for the lifetime of the activation.
//
// The only error is a missing session credential.
func (m *Manager) Open(ctx context.Context) (models.Session, error) {
	token, err := m.store.Get(models.KeyAccessToken)
	if err != nil || token == "" {
		return models.Session{}, shared.ErrNotAuthenticated
	}

	session, err := m.backend.CreateChat(ctx, token, DefaultTitle)
	if err != nil || session.ID == "" {
		m.logger.Warn("conversation create failed, using local session id", "error", err)
		return models.Session{ID: m.fallbackID(), Degraded: true}, nil
	}

	return models.Session{ID: session.ID}, nil
}

// fallbackID synthesizes a locally-unique correlation token from the current
// time and a random suffix. The backend never learns about these ids.
func (m *Manager) fallbackID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = fallbackAlphabet[rand.Intn(len(fallbackAlphabet))]
	}
	return fmt.Sprintf("chat_%d_%s", m.now().UnixMilli(), suffix)
}
