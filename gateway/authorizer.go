package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-session-client/internal/config"
)

// Authorizer builds the identity-provider URL the user visits to obtain the
// authorization code that Login later hands to the backend.
type Authorizer struct {
	config *oauth2.Config
}

// NewAuthorizer uses OIDC discovery when an issuer is configured and the
// static endpoint URLs otherwise.
func NewAuthorizer(ctx context.Context, cfg config.OAuthConfig, redirectURI string) (*Authorizer, error) {
	if cfg.GetClientID() == "" {
		return nil, errors.New("[gateway NewAuthorizer] client id is required")
	}

	endpoint := oauth2.Endpoint{
		AuthURL:  cfg.GetAuthURL(),
		TokenURL: cfg.GetTokenURL(),
	}
	if issuer := cfg.GetIssuer(); issuer != "" {
		provider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return nil, fmt.Errorf("[gateway NewAuthorizer] failed to create OIDC provider: %w", err)
		}
		endpoint = provider.Endpoint()
	}

	return &Authorizer{
		config: &oauth2.Config{
			ClientID:    cfg.GetClientID(),
			Endpoint:    endpoint,
			RedirectURL: redirectURI,
			Scopes:      cfg.GetScopes(),
		},
	}, nil
}

// AuthCodeURL returns the login URL for state. Offline access is requested so
// the backend receives a refresh-capable grant.
func (a *Authorizer) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (a *Authorizer) RedirectURI() string {
	return a.config.RedirectURL
}
