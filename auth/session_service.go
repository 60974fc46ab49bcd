package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-session-client/gateway"
	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/routes"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/token"
)

const (
	defaultRefreshTimeout = 30 * time.Second
	defaultRefreshSkew    = time.Minute
)

// SessionService owns the session lifecycle: restore at startup, login,
// refresh and logout. It is the only writer of the durable store and the
// in-memory cache, and it keeps the two in lock-step: the cache takes a new
// value only after the store has accepted it.
//
// Writers are serialized by mu, which is never held across a network call.
// Every commit advances epoch; a refresh whose epoch moved on while its
// exchange was in flight drops its result, so a logout can never be undone by
// a refresh that was already running.
type SessionService struct {
	store   sessions.Repo
	cache   *sessions.Cache
	gateway Gateway

	mu    sync.Mutex
	epoch uint64
	state atomic.Int32

	refreshes       singleflight.Group
	refreshTimeout  time.Duration
	refreshSkew     time.Duration
	logoutOnRevoked bool

	notifier *notifier
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	// refreshSnapshotHook runs between reading the refresh token and starting
	// the exchange. Tests only.
	refreshSnapshotHook func()
}

// SessionServiceOption defines a function type to modify the SessionService instance.
type SessionServiceOption func(*SessionService)

func WithLogger(logger zerolog.Logger) SessionServiceOption {
	return func(s *SessionService) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) SessionServiceOption {
	return func(s *SessionService) {
		s.metrics = m
	}
}

// WithRefreshTimeout bounds the validation refresh performed by Restore.
func WithRefreshTimeout(d time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.refreshTimeout = d
	}
}

// WithRefreshSkew sets how close to expiry RefreshIfExpiring starts refreshing.
func WithRefreshSkew(d time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.refreshSkew = d
	}
}

// WithLogoutOnRevokedRefresh makes Restore log out when the backend rejects
// the saved refresh token with 401/403, instead of keeping the cached session.
func WithLogoutOnRevokedRefresh(enabled bool) SessionServiceOption {
	return func(s *SessionService) {
		s.logoutOnRevoked = enabled
	}
}

func NewSessionService(store sessions.Repo, cache *sessions.Cache, gw Gateway, options ...SessionServiceOption) (*SessionService, error) {
	if store == nil {
		return nil, errors.New("[NewSessionService] store is required")
	}
	if cache == nil {
		return nil, errors.New("[NewSessionService] cache is required")
	}
	if gw == nil {
		return nil, errors.New("[NewSessionService] gateway is required")
	}

	s := &SessionService{
		store:          store,
		cache:          cache,
		gateway:        gw,
		refreshTimeout: defaultRefreshTimeout,
		refreshSkew:    defaultRefreshSkew,
		notifier:       newNotifier(),
		logger:         log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	s.state.Store(int32(StateSignedOut))
	return s, nil
}

func (s *SessionService) State() State {
	return State(s.state.Load())
}

func (s *SessionService) setState(state State) {
	s.state.Store(int32(state))
}

// Session returns the read-only view of the cache for request signing.
func (s *SessionService) Session() sessions.Reader {
	return s.cache
}

func (s *SessionService) Current() sessions.Session {
	return s.cache.Current()
}

// Destination is where the current user should be routed.
func (s *SessionService) Destination() routes.Destination {
	return routes.Resolve(s.cache.Current().Roles)
}

// Subscribe returns a channel of committed session changes and a function
// that stops delivery and closes the channel.
func (s *SessionService) Subscribe() (<-chan Event, func()) {
	return s.notifier.subscribe()
}

// Login exchanges an authorization code and, on success, persists the new
// session. On failure nothing is written and the previous session stays.
func (s *SessionService) Login(ctx context.Context, code, redirectURI string) Result {
	exchanged, err := s.gateway.ExchangeAuthorizationCode(ctx, code, redirectURI)
	if err == nil && !exchanged.Complete() {
		err = fmt.Errorf("[SessionService Login] %w: %w", errs.ErrMalformedResponse, errs.ErrIncompleteSession)
	}
	if err == nil {
		s.mu.Lock()
		err = s.commitLocked(ctx, exchanged)
		s.mu.Unlock()
	}

	if err != nil {
		s.metrics.Login(metrics.OutcomeFailure)
		s.logger.Warn().Err(err).Msg("login failed")
		return Failure(UserMessage(err), err)
	}

	s.metrics.Login(metrics.OutcomeSuccess)
	s.logger.Info().
		Str("account_id", utils.Value(exchanged.AccountID)).
		Str("token", sessions.Fingerprint(utils.Value(exchanged.AccessToken))).
		Msg("signed in")
	return Success(exchanged.Roles)
}

// Refresh mints a new access token from the cached refresh token. On failure
// the current session is left exactly as it was.
func (s *SessionService) Refresh(ctx context.Context) Result {
	refreshed, err := s.refresh(ctx)
	if err != nil {
		s.metrics.Refresh(metrics.OutcomeFailure)
		s.logger.Info().Err(err).Bool("transient", gateway.IsTransient(err)).Msg("refresh failed; keeping current session")
		return Failure(UserMessage(err), err)
	}
	s.metrics.Refresh(metrics.OutcomeSuccess)
	return Success(refreshed.Roles)
}

// RefreshIfExpiring refreshes only when the access token is a JWT that expires
// within the configured skew. Opaque tokens are left alone.
func (s *SessionService) RefreshIfExpiring(ctx context.Context) Result {
	current := s.cache.Current()
	if !current.HasAccessToken() {
		return Failure(MsgNoSavedToken, errs.ErrNoSavedToken)
	}

	in, err := token.Inspect(*current.AccessToken)
	if err != nil || !in.ExpiresWithin(s.refreshSkew) {
		return Success(current.Roles)
	}
	return s.Refresh(ctx)
}

// Load puts the saved session into memory without contacting the backend.
func (s *SessionService) Load(ctx context.Context) Result {
	stored, epoch, result, loaded := s.load(ctx)
	if !loaded {
		return result
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(epoch, stored)
}

// Restore rebuilds the cache from the store and validates it with a refresh.
// A failed validation keeps the saved session: a dead token will surface as a
// 401 on the next real call, and a flaky network at startup must not log the
// user out.
func (s *SessionService) Restore(ctx context.Context) Result {
	stored, epoch, result, loaded := s.load(ctx)
	if !loaded {
		if errs.Is(result.Err, errs.ErrNoSavedToken) {
			s.metrics.Restore(metrics.OutcomeSignedOut)
		}
		return result
	}

	refreshCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	refreshed, err := s.refresh(refreshCtx)
	if err == nil {
		s.metrics.Restore(metrics.OutcomeSuccess)
		return Success(refreshed.Roles)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// A login or logout committed while we were validating; it owns the state now.
		return s.supersededLocked()
	}

	if s.logoutOnRevoked && gateway.IsRevoked(err) {
		s.logger.Info().Err(err).Msg("saved refresh token was revoked; signing out")
		s.logoutLocked(ctx)
		s.metrics.Restore(metrics.OutcomeSignedOut)
		return Failure(MsgSessionExpired, err)
	}

	s.metrics.Restore(metrics.OutcomeOptimistic)
	s.logger.Info().Err(err).Msg("restored saved session without validation")
	return s.settleLocked(epoch, stored)
}

// Logout clears the store and the cache. It never fails: if the store cannot
// be cleared the error is logged and memory is cleared anyway.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

func (s *SessionService) logoutLocked(ctx context.Context) {
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear saved session; clearing memory anyway")
	}
	s.cache.Clear()
	s.epoch++
	s.setState(StateSignedOut)
	s.notifier.publish(Event{State: StateSignedOut, Session: sessions.Empty()})
	s.metrics.Logout()
	s.logger.Info().Msg("signed out")
}

// load copies the saved session into the cache and returns the epoch of that
// change. Nothing is copied when another change committed during the read;
// loaded is false whenever result is final.
func (s *SessionService) load(ctx context.Context) (stored sessions.Session, epoch uint64, result Result, loaded bool) {
	s.mu.Lock()
	start := s.epoch
	s.setState(StateRestoring)
	s.mu.Unlock()

	stored, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read saved session")
		stored = sessions.Empty()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != start {
		return sessions.Empty(), 0, s.supersededLocked(), false
	}
	if !stored.HasAccessToken() {
		s.cache.Clear()
		s.setState(StateSignedOut)
		return sessions.Empty(), 0, Failure(MsgNoSavedToken, errs.ErrNoSavedToken), false
	}
	s.cache.Replace(stored)
	s.epoch++
	return stored, s.epoch, Result{}, true
}

// settleLocked marks a loaded session as signed in, unless something else
// committed since it was loaded. mu must be held.
func (s *SessionService) settleLocked(epoch uint64, stored sessions.Session) Result {
	if s.epoch != epoch {
		return s.supersededLocked()
	}
	s.setState(StateSignedIn)
	s.notifier.publish(Event{State: StateSignedIn, Session: stored})
	return Success(stored.Roles)
}

// supersededLocked reports the outcome of an operation that lost to a
// concurrent login or logout. mu must be held.
func (s *SessionService) supersededLocked() Result {
	if current := s.cache.Current(); current.HasAccessToken() {
		return Success(current.Roles)
	}
	return Failure(MsgSessionChanged, errs.ErrSessionSuperseded)
}

// refresh coalesces concurrent refreshes of the same token into one exchange.
// The token and the epoch are read together, so a logout that lands before
// the exchange starts always supersedes it.
func (s *SessionService) refresh(ctx context.Context) (sessions.Session, error) {
	s.mu.Lock()
	current := s.cache.Current()
	epoch := s.epoch
	s.mu.Unlock()

	if !current.HasRefreshToken() {
		return sessions.Empty(), errs.ErrNoRefreshToken
	}
	refreshToken := *current.RefreshToken
	if s.refreshSnapshotHook != nil {
		s.refreshSnapshotHook()
	}

	key := strconv.FormatUint(epoch, 10) + ":" + refreshToken
	v, err, _ := s.refreshes.Do(key, func() (any, error) {
		return s.refreshOnce(ctx, refreshToken, epoch)
	})
	if err != nil {
		return sessions.Empty(), err
	}
	return v.(sessions.Session).Clone(), nil
}

func (s *SessionService) refreshOnce(ctx context.Context, refreshToken string, epoch uint64) (sessions.Session, error) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return sessions.Empty(), errs.ErrSessionSuperseded
	}
	if s.State() == StateSignedIn {
		s.setState(StateRefreshing)
	}
	s.mu.Unlock()

	exchanged, err := s.gateway.ExchangeRefreshToken(ctx, refreshToken)
	if err == nil && !exchanged.Complete() {
		err = fmt.Errorf("[SessionService Refresh] %w: %w", errs.ErrMalformedResponse, errs.ErrIncompleteSession)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return sessions.Empty(), errs.ErrSessionSuperseded
	}
	if err == nil {
		if !exchanged.HasRefreshToken() {
			exchanged.RefreshToken = utils.Ptr(refreshToken)
		}
		err = s.commitLocked(ctx, exchanged)
	}
	if err != nil {
		if s.State() == StateRefreshing {
			s.setState(StateSignedIn)
		}
		return sessions.Empty(), err
	}
	return exchanged, nil
}

// commitLocked writes next to the store and then to the cache. mu must be held.
func (s *SessionService) commitLocked(ctx context.Context, next sessions.Session) error {
	if err := s.store.Write(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStoreWrite, err)
	}
	s.cache.Replace(next)
	s.epoch++
	s.setState(StateSignedIn)
	s.notifier.publish(Event{State: StateSignedIn, Session: next})
	return nil
}
