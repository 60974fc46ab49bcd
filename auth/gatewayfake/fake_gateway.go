package gatewayfake

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/sessions"
)

// FakeGateway is a programmable auth.Gateway for tests.
type FakeGateway struct {
	mu sync.Mutex

	loginSession   sessions.Session
	loginErr       error
	refreshSession sessions.Session
	refreshErr     error

	refreshGate    chan struct{}
	refreshStarted chan struct{}

	loginCalls       int
	refreshCalls     int
	lastRefreshToken string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{refreshStarted: make(chan struct{}, 16)}
}

func (g *FakeGateway) SetLogin(s sessions.Session, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loginSession, g.loginErr = s, err
}

func (g *FakeGateway) SetRefresh(s sessions.Session, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshSession, g.refreshErr = s, err
}

// BlockRefresh makes refresh exchanges wait until the returned function is
// called or their context ends.
func (g *FakeGateway) BlockRefresh() (release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate := make(chan struct{})
	g.refreshGate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// RefreshStarted receives a value each time a refresh exchange begins.
func (g *FakeGateway) RefreshStarted() <-chan struct{} {
	return g.refreshStarted
}

func (g *FakeGateway) ExchangeAuthorizationCode(_ context.Context, _, _ string) (sessions.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loginCalls++
	return g.loginSession.Clone(), g.loginErr
}

func (g *FakeGateway) ExchangeRefreshToken(ctx context.Context, refreshToken string) (sessions.Session, error) {
	g.mu.Lock()
	g.refreshCalls++
	g.lastRefreshToken = refreshToken
	gate := g.refreshGate
	s, err := g.refreshSession.Clone(), g.refreshErr
	g.mu.Unlock()

	select {
	case g.refreshStarted <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return sessions.Empty(), fmt.Errorf("%w: %w", errs.ErrNetwork, ctx.Err())
		}
	}
	return s, err
}

func (g *FakeGateway) Calls() (login, refresh int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loginCalls, g.refreshCalls
}

func (g *FakeGateway) LastRefreshToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRefreshToken
}
