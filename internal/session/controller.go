// Package session manages the lifecycle of the tokens issued by the identity
// service: login, registration, proactive refresh, logout, and notification
// of dependents whenever a new access token is acquired.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/gogotex/gogotex/backend/auth-widget/internal/claims"
	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/events"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/identity"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/scheduler"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/tokenstore"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/metrics"
)

var log = logger.Named("session")

// IdentityAPI is the remote identity service. *identity.Client implements it.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (*identity.TokenPair, error)
	Register(ctx context.Context, email, password string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error)
	OAuthURL(provider string) string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier receives every user-visible notice.
func WithNotifier(fn func(Notice)) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithClock replaces time.Now for expiry computations and the refresh timer.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRefreshSkew sets how long before expiry the proactive refresh fires.
func WithRefreshSkew(d time.Duration) Option {
	return func(c *Controller) { c.skew = d }
}

// WithBus shares an existing listener registry.
func WithBus(b *events.Bus) Option {
	return func(c *Controller) { c.bus = b }
}

// Controller is the single owner of the token store and the refresh timer.
// Construct one per application and hand it to UI collaborators.
type Controller struct {
	api    IdentityAPI
	store  tokenstore.Store
	bus    *events.Bus
	sched  *scheduler.Scheduler
	notify func(Notice)
	now    func() time.Time
	skew   time.Duration

	// mu serializes store and scheduler access. Listeners run outside it.
	mu    sync.Mutex
	state State
	// epoch changes whenever the session is cleared or replaced by a login
	epoch uint64

	flight singleflight.Group
}

// New builds a controller in the LoggedOut state. Call Restore to pick up a
// persisted session.
func New(api IdentityAPI, store tokenstore.Store, opts ...Option) *Controller {
	c := &Controller{
		api:   api,
		store: store,
		now:   time.Now,
		skew:  scheduler.DefaultSkew,
		state: LoggedOut,
	}
	for _, o := range opts {
		o(c)
	}
	if c.bus == nil {
		c.bus = events.NewBus()
	}
	c.sched = scheduler.New(c.skew, c.scheduledRefresh, scheduler.WithClock(c.now))
	return c
}

// Restore loads a persisted session at startup and arms the refresh timer.
// Listeners are not notified on this path.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.store.Get(ctx)
	if err != nil {
		return autherrors.Wrapf(err, "restore session")
	}
	if rec == nil {
		c.state = LoggedOut
		return nil
	}
	if !rec.Valid(c.now()) {
		// only trust a real exp claim here; the fallback would invent validity
		if exp, ok := claims.ExpiresAt(rec.AccessToken); ok && exp.UnixMilli() != rec.Expiry {
			rec.Expiry = exp.UnixMilli()
			if err := c.store.Set(ctx, *rec); err != nil {
				log.Warnf("could not persist recomputed expiry: %v", err)
			}
		}
	}
	c.state = LoggedIn
	c.sched.Arm(rec.ExpiresAt())
	log.Infof("restored session, access token expires %s", rec.ExpiresAt().Format(time.RFC3339))
	return nil
}

// Login exchanges credentials for tokens and starts the session. On failure
// the state is unchanged and the error carries the message to show.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.emit(NoticeInfo, MsgLoggingIn)
	pair, err := c.api.Login(ctx, email, password)
	if err == nil {
		err = c.install(ctx, pair, nil)
	}
	if err == nil {
		c.bus.Publish(pair.AccessToken)
	}
	if err != nil {
		metrics.SessionOperations.WithLabelValues("login", metrics.ResultFailure).Inc()
		log.Warnf("login failed: %v", err)
		c.emit(NoticeError, "Error: "+autherrors.UserMessage(err))
		return err
	}
	metrics.SessionOperations.WithLabelValues("login", metrics.ResultSuccess).Inc()
	c.emit(NoticeInfo, MsgLoginSuccess)
	return nil
}

// Register creates an account. No session is created; the returned message
// asks the user to verify their email.
func (c *Controller) Register(ctx context.Context, email, password string) (string, error) {
	c.emit(NoticeInfo, MsgRegistering)
	msg, err := c.api.Register(ctx, email, password)
	if err != nil {
		metrics.SessionOperations.WithLabelValues("register", metrics.ResultFailure).Inc()
		log.Warnf("register failed: %v", err)
		c.emit(NoticeError, "Error: "+autherrors.UserMessage(err))
		return "", err
	}
	metrics.SessionOperations.WithLabelValues("register", metrics.ResultSuccess).Inc()
	c.emit(NoticeInfo, msg)
	return msg, nil
}

// Refresh obtains a new token pair with the stored refresh token. Concurrent
// calls share one request. Any failure ends the session: the record is
// cleared and the error wraps ErrSessionExpired. There is no retry. If the
// session was logged out or replaced meanwhile the result is dropped and the
// error wraps ErrSessionChanged.
//
// Listeners are notified once per request, by the caller that started it,
// after the request has left the flight group, so a listener may call Refresh.
func (c *Controller) Refresh(ctx context.Context) error {
	// the request is not cancellable once started; joined callers depend on it
	ctx = context.WithoutCancel(ctx)
	leader := false
	v, err, _ := c.flight.Do("refresh", func() (interface{}, error) {
		leader = true
		return c.refresh(ctx)
	})
	if !leader {
		metrics.SessionOperations.WithLabelValues("refresh", metrics.ResultJoined).Inc()
		log.Debugf("refresh shared between concurrent callers")
		return err
	}
	if err == nil {
		c.bus.Publish(v.(string))
	}
	return err
}

// refresh returns the newly installed access token.
func (c *Controller) refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	rec, err := c.store.Get(ctx)
	if err != nil || rec == nil {
		cause := err
		if cause == nil {
			cause = autherrors.ErrNotAuthenticated
		}
		c.clearLocked(ctx)
		c.mu.Unlock()
		return "", c.expired(cause)
	}
	epoch := c.epoch
	c.state = Refreshing
	c.mu.Unlock()

	pair, err := c.api.Refresh(ctx, rec.RefreshToken)
	if err == nil {
		err = c.install(ctx, pair, &epoch)
		if err == nil {
			metrics.SessionOperations.WithLabelValues("refresh", metrics.ResultSuccess).Inc()
			return pair.AccessToken, nil
		}
	}
	if errors.Is(err, autherrors.ErrSessionChanged) {
		log.Infof("discarding refresh result: %v", err)
		return "", err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		log.Infof("refresh failed after the session changed, leaving it alone: %v", err)
		return "", fmt.Errorf("%w: %w", autherrors.ErrSessionChanged, err)
	}
	c.clearLocked(ctx)
	c.mu.Unlock()
	return "", c.expired(err)
}

func (c *Controller) expired(cause error) error {
	metrics.SessionOperations.WithLabelValues("refresh", metrics.ResultFailure).Inc()
	log.Warnf("session expired: %v", cause)
	c.emit(NoticeError, MsgSessionExpired)
	return fmt.Errorf("%w: %w", autherrors.ErrSessionExpired, cause)
}

// install persists pair and re-arms the timer. Callers publish the access
// token once it returns. A nil expect means a login, which replaces any session; a
// refresh passes the epoch it started from and is discarded if it changed.
func (c *Controller) install(ctx context.Context, pair *identity.TokenPair, expect *uint64) error {
	exp := claims.Expiry(pair.AccessToken, c.now())
	rec := tokenstore.NewRecord(pair.AccessToken, pair.RefreshToken, exp)

	c.mu.Lock()
	if expect != nil && *expect != c.epoch {
		c.mu.Unlock()
		return autherrors.ErrSessionChanged
	}
	if err := c.store.Set(ctx, rec); err != nil {
		c.mu.Unlock()
		return autherrors.Wrapf(err, "persist session")
	}
	if expect == nil {
		c.epoch++
	}
	c.sched.Arm(exp)
	c.state = LoggedIn
	c.mu.Unlock()
	return nil
}

// Logout ends the session locally. It needs no network access and always
// succeeds; storage errors are logged.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.clearLocked(ctx)
	c.mu.Unlock()
	metrics.SessionOperations.WithLabelValues("logout", metrics.ResultSuccess).Inc()
	c.emit(NoticeInfo, MsgLoggedOut)
}

func (c *Controller) clearLocked(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		log.Errorf("clearing stored session: %v", err)
	}
	c.sched.Disarm()
	c.state = LoggedOut
	c.epoch++
}

func (c *Controller) scheduledRefresh() {
	log.Infof("access token about to expire, refreshing")
	if err := c.Refresh(context.Background()); err != nil {
		log.Warnf("scheduled refresh failed: %v", err)
	}
}

// AccessToken returns the current access token, or "" when there is no
// session or the token has expired.
func (c *Controller) AccessToken(ctx context.Context) string {
	rec, err := c.current(ctx)
	if err != nil || rec == nil || !rec.Valid(c.now()) {
		return ""
	}
	return rec.AccessToken
}

func (c *Controller) current(ctx context.Context) (*tokenstore.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, err := c.store.Get(ctx)
	if err != nil {
		log.Warnf("reading stored session: %v", err)
		return nil, err
	}
	return rec, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NextRefresh returns when the proactive refresh fires, if one is pending.
func (c *Controller) NextRefresh() (time.Time, bool) {
	return c.sched.Deadline()
}

// Subscribe registers l for every newly acquired access token (login and
// refresh). Registering the same listener twice is a no-op.
func (c *Controller) Subscribe(l events.Listener) bool {
	added := c.bus.Subscribe(l)
	if added {
		log.Debugf("listener subscribed, %d registered", c.bus.Len())
	}
	return added
}

// Unsubscribe removes l.
func (c *Controller) Unsubscribe(l events.Listener) bool { return c.bus.Unsubscribe(l) }

// BeginOAuth returns the URL the browser must navigate to for third-party
// login. The session flow resumes when the provider redirects back.
func (c *Controller) BeginOAuth(provider string) string {
	c.emit(NoticeInfo, "Redirecting to "+provider+"...")
	return c.api.OAuthURL(provider)
}

// Token implements oauth2.TokenSource. An expired access token is refreshed
// first.
func (c *Controller) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	rec, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, autherrors.ErrNotAuthenticated
	}
	if !rec.Valid(c.now()) {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		if rec, err = c.current(ctx); err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, autherrors.ErrNotAuthenticated
		}
	}
	return &oauth2.Token{
		AccessToken:  rec.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: rec.RefreshToken,
		Expiry:       rec.ExpiresAt(),
	}, nil
}

// HTTPClient returns a client that sends the current access token as a
// bearer token with every request.
func (c *Controller) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c)
}

func (c *Controller) emit(level NoticeLevel, msg string) {
	if c.notify != nil {
		c.notify(Notice{Level: level, Message: msg})
	}
}
