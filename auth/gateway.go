package auth

import (
	"context"

	"github.com/jrsteele09/go-session-client/sessions"
)

// Gateway performs the two network exchanges the session service depends on.
// gateway.Client is the production implementation.
type Gateway interface {
	ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string) (sessions.Session, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (sessions.Session, error)
}
