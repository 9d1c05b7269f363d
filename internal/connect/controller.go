package connect

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/providers"
	"github.com/soconhq/socon/internal/server"
	"github.com/soconhq/socon/internal/services"
	"github.com/soconhq/socon/internal/shared"
	"github.com/soconhq/socon/internal/store"
	"golang.org/x/time/rate"
)

// Config carries the timing knobs and hooks for connection attempts.
// Zero values take the documented defaults.
type Config struct {
	// ListenAddr is the loopback address the callback server binds to.
	ListenAddr string

	// PollInterval is the cadence of the backend poll watch. Default 500ms.
	PollInterval time.Duration

	// GracePeriod is how long to wait, once the poll watch sees the attempt
	// concluded without a callback, before the single deciding re-fetch.
	// The right value depends on how slow the provider's redirect chain is,
	// which is why it is a knob and not a constant. Default 1s.
	GracePeriod time.Duration

	// Timeout is the hard ceiling for one attempt. Default 5 minutes.
	Timeout time.Duration

	// OpenBrowser launches the consent page. Defaults to [shared.OpenBrowser].
	OpenBrowser func(url string) error
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 500 * time.Millisecond
	}
	return c.PollInterval
}

func (c Config) gracePeriod() time.Duration {
	if c.GracePeriod <= 0 {
		return time.Second
	}
	return c.GracePeriod
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Minute
	}
	return c.Timeout
}

// Controller drives browser-based connection attempts against the backend.
//
// One attempt per platform may be outstanding at a time; the per-platform
// lock is checked before anything observable happens.
type Controller struct {
	backend services.Backend
	store   *store.Store
	logger  *log.Logger
	cfg     Config

	// limiter bounds backend polling regardless of the configured interval.
	limiter *rate.Limiter

	mu         sync.Mutex
	connecting map[string]bool
}

// NewController creates a controller with the given dependencies.
func NewController(backend services.Backend, st *store.Store, logger *log.Logger, cfg Config) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:3000"
	}
	if cfg.OpenBrowser == nil {
		cfg.OpenBrowser = shared.OpenBrowser
	}

	return &Controller{
		backend:    backend,
		store:      st,
		logger:     logger,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		connecting: make(map[string]bool),
	}
}

// tryAcquire takes the per-platform connecting lock.
func (c *Controller) tryAcquire(platform string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connecting[platform] {
		return false
	}
	c.connecting[platform] = true
	return true
}

func (c *Controller) release(platform string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.connecting, platform)
}

// Connecting reports whether an attempt is outstanding for the platform.
func (c *Controller) Connecting(platform string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connecting[platform]
}

// ConnectOpts carries per-attempt overrides for a single Connect call.
type ConnectOpts struct {
	// OpenBrowser replaces the configured launcher for this attempt only.
	// Lets a caller print the consent URL instead of opening a browser
	// while the attempt still holds the controller's per-platform lock.
	OpenBrowser func(url string) error
}

// Connect runs one full connection attempt for a platform and blocks until a
// terminal outcome: completed, timed out, launch failed, or cancelled.
//
// Guards run before anything observable happens: a second attempt for a
// platform already connecting fails with ErrAttemptInFlight, and a platform
// the server holds no app credentials for fails with ErrNotConfigured
// without a browser being launched.
func (c *Controller) Connect(ctx context.Context, platform string) (Outcome, error) {
	return c.ConnectWith(ctx, platform, ConnectOpts{})
}

// ConnectWith is Connect with per-attempt overrides applied.
func (c *Controller) ConnectWith(ctx context.Context, platform string, opts ConnectOpts) (Outcome, error) {
	openBrowser := c.cfg.OpenBrowser
	if opts.OpenBrowser != nil {
		openBrowser = opts.OpenBrowser
	}

	cfg, err := providers.Lookup(platform)
	if err != nil {
		return Outcome{State: StateIdle, Err: err}, err
	}
	platform = cfg.Platform.String()

	if !c.tryAcquire(platform) {
		err := fmt.Errorf("%w: %s", shared.ErrAttemptInFlight, platform)
		return Outcome{State: StateIdle, Err: err}, err
	}
	defer c.release(platform)

	session := newSession(platform)
	logger := c.logger.With("platform", platform, "session", session.ID())

	status, err := c.backend.ProviderStatus(ctx, platform)
	if err != nil {
		return fail(session, StateIdle, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err))
	}
	if !status.Configured {
		return fail(session, StateIdle, fmt.Errorf("%w: %s", shared.ErrNotConfigured, platform))
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fail(session, StateIdle, err)
	}

	returnURL := fmt.Sprintf("http://%s/callback?state=%s", c.cfg.ListenAddr, url.QueryEscape(state))
	authURL, err := c.backend.AuthorizationURL(ctx, platform, returnURL)
	if err != nil {
		return fail(session, StateIdle, err)
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(logger))
	router.Handler(handler)

	listener, err := net.Listen("tcp", c.cfg.ListenAddr)
	if err != nil {
		return fail(session, StateIdle, fmt.Errorf("failed to start callback server: %w", err))
	}

	httpServer := &http.Server{Handler: router}
	session.trackServer(httpServer)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Debug("callback server listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	if err := openBrowser(authURL); err != nil {
		logger.Warn("browser launch failed", "error", err)
		return fail(session, StateLaunchFailed, fmt.Errorf("%w: open this URL manually: %s", shared.ErrBrowserLaunch, authURL))
	}

	session.setState(StateAwaiting)
	logger.Info("awaiting authorization", "timeout", c.cfg.timeout())

	c.watchCallback(ctx, session, handler, logger)
	c.watchPoll(ctx, session, logger)

	session.trackTimer(time.AfterFunc(c.cfg.timeout(), func() {
		if session.Resolve(Outcome{State: StateTimedOut, Err: fmt.Errorf("%w: no authorization after %v", shared.ErrTimeout, c.cfg.timeout())}) {
			logger.Warn("connection attempt timed out")
		}
	}))

	select {
	case outcome := <-session.Done():
		logger.Info("attempt resolved", "state", outcome.State.String())
		return outcome, outcome.Err
	case err := <-serverErrors:
		session.Resolve(Outcome{State: StateIdle, Err: err})
		return Outcome{State: StateIdle, Err: err}, err
	case <-ctx.Done():
		// The unmount path: release every handle even though no outcome
		// will be rendered.
		session.Teardown()
		return Outcome{State: StateIdle, Err: ctx.Err()}, ctx.Err()
	}
}

// fail resolves a session that never reached the awaiting state.
func fail(session *Session, state State, err error) (Outcome, error) {
	outcome := Outcome{State: state, Err: err}
	session.Resolve(outcome)
	return outcome, err
}

// watchCallback resolves the session when the loopback callback lands.
func (c *Controller) watchCallback(ctx context.Context, session *Session, handler *server.CallbackHandler, logger *log.Logger) {
	go func() {
		select {
		case <-session.Quit():
			return
		case values, ok := <-handler.Result():
			if !ok {
				return
			}

			result := ParseCallback(values)
			if result == nil {
				session.Resolve(Outcome{State: StateCompleted, Err: fmt.Errorf("%w: unrecognized callback", shared.ErrAuthFailed)})
				return
			}

			if !result.Success {
				if session.Resolve(Outcome{State: StateCompleted, Err: result.Err()}) {
					logger.Warn("callback reported failure", "code", result.ErrorCode)
				}
				return
			}

			status := c.fetchStatus(ctx, session.Platform())
			if status == nil {
				// Backend fetch failed; trust the callback parameters.
				status = &models.ConnectionStatus{
					Platform:  session.Platform(),
					Connected: true,
					Username:  result.Username,
				}
			}

			if session.Resolve(Outcome{State: StateCompleted, Status: status}) {
				logger.Info("connected via callback", "username", status.Username)
				c.applyStatus(*status)
			}
		}
	}()
}

// watchPoll resolves the session when the backend shows the attempt concluded
// without the callback having fired.
func (c *Controller) watchPoll(ctx context.Context, session *Session, logger *log.Logger) {
	ticker := time.NewTicker(c.cfg.pollInterval())
	session.trackTicker(ticker)

	go func() {
		for {
			select {
			case <-session.Quit():
				return
			case <-ticker.C:
				if session.Resolved() {
					return
				}
				if !c.limiter.Allow() {
					continue
				}

				records, err := c.backend.Connections(ctx)
				if err != nil {
					logger.Debug("poll fetch failed", "error", err)
					continue
				}

				record := services.FindConnection(records, session.Platform())
				if record == nil || !record.IsActive {
					continue
				}

				logger.Debug("poll observed completion before callback, entering grace period", "grace", c.cfg.gracePeriod())
				c.concludeAfterGrace(ctx, session, logger)
				return
			}
		}
	}()
}

// concludeAfterGrace waits the grace period, then performs exactly one
// deciding status re-fetch. The wait gives an in-flight loopback redirect a
// chance to land and win the race; if it does, this path is a no-op.
func (c *Controller) concludeAfterGrace(ctx context.Context, session *Session, logger *log.Logger) {
	timer := time.NewTimer(c.cfg.gracePeriod())
	session.trackTimer(timer)

	select {
	case <-session.Quit():
		return
	case <-timer.C:
	}

	if session.Resolved() {
		return
	}

	records, err := c.backend.Connections(ctx)
	if err != nil {
		session.Resolve(Outcome{State: StateCompleted, Err: fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)})
		return
	}

	record := services.FindConnection(records, session.Platform())
	if record == nil || !record.IsActive {
		session.Resolve(Outcome{State: StateCompleted, Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, session.Platform())})
		return
	}

	status := record.Status()
	if session.Resolve(Outcome{State: StateCompleted, Status: &status}) {
		logger.Info("connected via status poll", "username", status.Username)
		c.applyStatus(status)
	}
}

// fetchStatus fetches the platform's current status from the backend, or nil on failure.
func (c *Controller) fetchStatus(ctx context.Context, platform string) *models.ConnectionStatus {
	records, err := c.backend.Connections(ctx)
	if err != nil {
		return nil
	}
	record := services.FindConnection(records, platform)
	if record == nil {
		return nil
	}
	status := record.Status()
	return &status
}

func (c *Controller) applyStatus(status models.ConnectionStatus) {
	if c.store == nil {
		return
	}
	if err := c.store.Apply(status); err != nil {
		c.logger.Warn("failed to apply connection status", "platform", status.Platform, "error", err)
	}
}

// Disconnect removes the platform connection on the backend and clears local state.
func (c *Controller) Disconnect(ctx context.Context, platform string) error {
	cfg, err := providers.Lookup(platform)
	if err != nil {
		return err
	}
	platform = cfg.Platform.String()

	if err := c.backend.Disconnect(ctx, platform); err != nil {
		return err
	}
	if c.store != nil {
		c.store.Clear(platform)
	}
	return nil
}
