package oauthmodel

// Backend auth endpoints.
const (
	AuthenticationPath = "/auth/outbound/authentication"
	RefreshPath        = "/auth/refresh"
)

// AuthenticationRequest is the body of POST /auth/outbound/authentication.
// The backend exchanges the code with the identity provider on the client's behalf.
type AuthenticationRequest struct {
	// Code is the authorization code the identity provider returned to RedirectURI.
	Code string `json:"code"`

	// RedirectURI must match the redirect used when the code was issued.
	RedirectURI string `json:"redirectUri"`
}

func (r AuthenticationRequest) Validate() error {
	if r.Code == "" {
		return ErrMissingCode
	}
	if r.RedirectURI == "" {
		return ErrMissingRedirectURI
	}
	return nil
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	if r.RefreshToken == "" {
		return ErrMissingRefreshToken
	}
	return nil
}
