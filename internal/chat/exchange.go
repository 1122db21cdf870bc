package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
)

// Exchanger drives the message send/receive cycle for one conversation
// session. At most one exchange is in flight at a time; submissions made
// while loading are rejected, not queued. The transcript is append-only and
// held only in memory.
type Exchanger struct {
	backend services.Backend
	store   models.SessionStore
	session models.Session
	logger  *log.Logger
	now     func() time.Time

	mu       sync.Mutex
	turns    []models.Turn
	inFlight bool
}

// ExchangerOpts contains configuration options for creating an Exchanger.
type ExchangerOpts struct {
	Backend services.Backend
	Store   models.SessionStore
	Session models.Session
	Logger  *log.Logger
	Now     func() time.Time
}

// NewExchanger creates an Exchanger with defaults for unset options.
func NewExchanger(opts ExchangerOpts) *Exchanger {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Exchanger{
		backend: opts.Backend,
		store:   opts.Store,
		session: opts.Session,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Session returns the conversation session this exchanger is bound to.
func (e *Exchanger) Session() models.Session {
	return e.session
}

// Turns returns a snapshot of the transcript in append order.
func (e *Exchanger) Turns() []models.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Turn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Loading reports whether an exchange is currently in flight.
func (e *Exchanger) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Begin starts an exchange: rejects blank input and concurrent submissions,
// otherwise appends the user turn optimistically and marks the cycle in
// flight. The user turn is visible in the transcript before any network call.
func (e *Exchanger) Begin(utterance string) (models.Turn, bool) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return models.Turn{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return models.Turn{}, false
	}

	turn := models.Turn{
		ID:        fmt.Sprintf("msg_%d", e.now().UnixMilli()),
		Content:   utterance,
		Role:      models.RoleUser,
		Timestamp: e.now(),
	}
	e.turns = append(e.turns, turn)
	e.inFlight = true

	return turn, true
}

// Finish completes an exchange begun with [Exchanger.Begin]: one call to the
// backend's message endpoint, then exactly one appended assistant turn: the
// reply on success, a synthesized failure report otherwise. The in-flight
// flag clears regardless of outcome; nothing is retried.
func (e *Exchanger) Finish(ctx context.Context, userTurn models.Turn) models.Turn {
	reply := e.perform(ctx, userTurn)

	e.mu.Lock()
	e.turns = append(e.turns, reply)
	e.inFlight = false
	e.mu.Unlock()

	return reply
}

// Send runs one full exchange cycle. Returns false when the submission was
// rejected (blank input or a prior exchange still in flight).
func (e *Exchanger) Send(ctx context.Context, utterance string) bool {
	turn, ok := e.Begin(utterance)
	if !ok {
		return false
	}
	e.Finish(ctx, turn)
	return true
}

func (e *Exchanger) perform(ctx context.Context, userTurn models.Turn) models.Turn {
	token, _ := e.store.Get(models.KeyAccessToken)
	apiKey, _ := e.store.Get(models.KeyGroqAPIKey)

	req := &services.MessageRequest{
		Message: userTurn.Content,
		ChatID:  e.session.ID,
		Context: map[string]any{},
	}

	reply, err := e.backend.SendMessage(ctx, token, apiKey, req)
	if err != nil {
		e.logger.Warn("message exchange failed", "chat_id", e.session.ID, "error", err)
		return models.Turn{
			ID:        fmt.Sprintf("error_%d", e.now().UnixMilli()),
			Content:   fmt.Sprintf("Sorry, I encountered an error: %v. Please check your API key and try again.", err),
			Role:      models.RoleAssistant,
			Timestamp: e.now(),
		}
	}

	return models.Turn{
		ID:        reply.MessageID,
		Content:   reply.Response,
		Role:      models.RoleAssistant,
		Timestamp: e.now(),
	}
}
