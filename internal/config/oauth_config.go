package config

import "strings"

// OAuthConfig describes the identity provider the user signs in with before the
// authorization code is handed to the backend.
type OAuthConfig interface {
	GetIssuer() string
	GetAuthURL() string
	GetTokenURL() string
	GetClientID() string
	GetScopes() []string
}

type OAuth struct {
	values Values
}

var _ OAuthConfig = OAuth{}

// GetIssuer enables OIDC discovery when set. Discovery takes precedence over
// the static endpoint URLs.
func (o OAuth) GetIssuer() string {
	return o.values.lookup("OAUTH_ISSUER", "")
}

func (o OAuth) GetAuthURL() string {
	return o.values.lookup("OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/auth")
}

func (o OAuth) GetTokenURL() string {
	return o.values.lookup("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
}

func (o OAuth) GetClientID() string {
	return o.values.lookup("OAUTH_CLIENT_ID", "")
}

func (o OAuth) GetScopes() []string {
	return strings.Fields(o.values.lookup("OAUTH_SCOPES", "openid profile email"))
}
