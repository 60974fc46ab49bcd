// Package transport signs outgoing backend requests with the current session.
package transport

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-session-client/sessions"
)

// SigningTransport attaches "Accept: application/json" to every request and
// "Authorization: Bearer <token>" whenever the session has an access token.
// It never refreshes; a 401 is left for the caller to handle.
type SigningTransport struct {
	Session sessions.Reader
	Base    http.RoundTripper
}

var _ http.RoundTripper = (*SigningTransport)(nil)

func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	signed := req.Clone(req.Context())
	signed.Header.Set("Accept", "application/json")

	if accessToken := t.Session.AccessToken(); accessToken != "" {
		tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		tok.SetAuthHeader(signed)
	}
	return t.base().RoundTrip(signed)
}

func (t *SigningTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// NewClient returns an HTTP client for the backend that signs every request
// from session.
func NewClient(session sessions.Reader, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &SigningTransport{Session: session},
	}
}
