package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/server"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
)

// Default timer intervals for the bootstrap lifecycle.
const (
	DefaultTick = 200 * time.Millisecond  // cosmetic progress interval
	DefaultHold = 2500 * time.Millisecond // success display delay before forward navigation
)

// Bootstrap drives the redirect result through credential exchange into the
// session store. Once started, a run always resolves to success or error;
// there is no cancellation of the exchange itself and no retry.
type Bootstrap struct {
	backend services.Backend
	store   models.SessionStore
	logger  *log.Logger
	tick    time.Duration
	hold    time.Duration
	jitter  func() float64
}

// BootstrapOpts contains configuration options for creating a Bootstrap.
type BootstrapOpts struct {
	Backend services.Backend
	Store   models.SessionStore
	Logger  *log.Logger
	Tick    time.Duration
	Hold    time.Duration
	Jitter  func() float64 // progress increment source, swappable in tests
}

// NewBootstrap creates a Bootstrap with defaults for unset options.
func NewBootstrap(opts BootstrapOpts) *Bootstrap {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	if opts.Jitter == nil {
		opts.Jitter = rand.Float64
	}

	return &Bootstrap{
		backend: opts.Backend,
		store:   opts.Store,
		logger:  opts.Logger,
		tick:    opts.Tick,
		hold:    opts.Hold,
		jitter:  opts.Jitter,
	}
}

// Update is one observable transition of the bootstrap. Advance is set on the
// final update of a successful run, after the success state has been shown
// for the display delay: the signal to move on to the chat surface.
type Update struct {
	State   State
	Advance bool
}

// Run consumes a redirect result and returns a channel of state updates.
// The channel closes when the run reaches a terminal state (and, on success,
// the forward-navigation delay has elapsed or ctx was cancelled). Timers are
// owned by the run and stop on transition out of processing.
func (b *Bootstrap) Run(ctx context.Context, cb server.CallbackResult) <-chan Update {
	updates := make(chan Update, 16)

	go func() {
		defer close(updates)

		state := Initial()
		emit := func(ev Event) {
			state = Reduce(state, ev)
			updates <- Update{State: state}
		}
		updates <- Update{State: state}

		// Input priority: provider error, then code, then temp token.
		if cb.ErrParam != "" {
			b.logger.Warn("provider reported an error", "error", cb.ErrParam)
			emit(Failed{Reason: fmt.Sprintf("Authentication was cancelled or failed: %s", cb.ErrParam)})
			return
		}
		if cb.Code == "" && cb.TempToken == "" {
			emit(Failed{Reason: MsgNoCredentials})
			return
		}

		type outcome struct {
			result  *services.ExchangeResult
			err     error
			message string
		}

		done := make(chan outcome, 1)
		go func() {
			if cb.Code != "" {
				res, err := b.backend.ExchangeCode(ctx, cb.Code, cb.State)
				done <- outcome{result: res, err: err, message: MsgWelcome}
				return
			}
			res, err := b.backend.ExchangeTempToken(ctx, cb.TempToken)
			done <- outcome{result: res, err: err, message: MsgTokenAccepted}
		}()

		if cb.Code != "" {
			emit(Note{Message: MsgExchanging, Progress: 30})
		} else {
			emit(Note{Message: MsgValidating, Progress: 40})
		}

		ticker := time.NewTicker(b.tick)
		var out outcome
	pending:
		for {
			select {
			case <-ticker.C:
				emit(Tick{Delta: b.jitter() * 15})
			case out = <-done:
				break pending
			case <-ctx.Done():
				ticker.Stop()
				emit(Failed{Reason: MsgNetworkFailure})
				return
			}
		}
		ticker.Stop()

		if out.err != nil {
			emit(Failed{Reason: b.describeExchangeFailure(out.err)})
			return
		}
		if out.result == nil || out.result.AccessToken == "" {
			b.logger.Error("exchange response missing access token")
			emit(Failed{Reason: MsgGenericFailure})
			return
		}

		emit(Note{Message: MsgFinalizing, Progress: 60})

		if err := b.persist(out.result); err != nil {
			b.logger.Error("failed to persist session credentials", "error", err)
			emit(Failed{Reason: MsgGenericFailure})
			return
		}

		// Success must be observable before any forward navigation.
		emit(Resolved{User: out.result.User, Message: out.message})

		hold := time.NewTimer(b.hold)
		defer hold.Stop()
		select {
		case <-hold.C:
			updates <- Update{State: state, Advance: true}
		case <-ctx.Done():
		}
	}()

	return updates
}

// describeExchangeFailure maps an exchange error to the user-facing reason:
// the backend's detail message for an HTTP rejection when present, the
// generic message otherwise, and the network message for transport failures.
func (b *Bootstrap) describeExchangeFailure(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		b.logger.Warn("backend rejected credential exchange", "status", apiErr.StatusCode)
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return MsgGenericFailure
	}

	b.logger.Warn("credential exchange transport failure", "error", err)
	return MsgNetworkFailure
}

// persist writes credentials and identity to the session store exactly once
// per successful exchange. The refresh token is optional.
func (b *Bootstrap) persist(res *services.ExchangeResult) error {
	if err := b.store.Set(models.KeyAccessToken, res.AccessToken); err != nil {
		return err
	}
	if res.RefreshToken != "" {
		if err := b.store.Set(models.KeyRefreshToken, res.RefreshToken); err != nil {
			return err
		}
	}

	encoded, err := models.EncodeUser(res.User)
	if err != nil {
		return err
	}
	return b.store.Set(models.KeyUser, encoded)
}
