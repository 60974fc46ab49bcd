// Package token reads claims from access tokens issued by the backend.
//
// The client cannot verify signatures (it holds no keys), so claims read here
// are hints for scheduling refreshes and for display only. They are never used
// for authorization decisions.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-session-client/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrOpaqueToken = errors.New("token is not a JWT")

// Introspection is the unverified view of an access token.
type Introspection struct {
	Subject   string    // "sub" claim
	ExpiresAt time.Time // zero when the token carries no "exp"
	IssuedAt  time.Time // zero when the token carries no "iat"
	Roles     []string  // "roles" claim, never nil
}

// Inspect parses raw without verifying it. Opaque (non-JWT) tokens return ErrOpaqueToken.
func Inspect(raw string) (*Introspection, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, ErrOpaqueToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	in := &Introspection{Roles: []string{}}
	in.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		in.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		in.IssuedAt = iat.Time
	}
	if claimRoles, ok := claims["roles"].([]any); ok {
		in.Roles = utils.ToStringSlice(claimRoles)
	}
	return in, nil
}

// ExpiresWithin reports whether the token expires in less than d from now.
// Tokens without an expiry never do.
func (i *Introspection) ExpiresWithin(d time.Duration) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().Add(d).After(i.ExpiresAt)
}
