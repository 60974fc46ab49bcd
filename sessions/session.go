package sessions

import (
	"strings"

	"github.com/jrsteele09/go-session-client/internal/utils"
)

// Session is the authenticated identity and credential state of the current user.
// Optional fields are nil when absent. Roles is never nil.
type Session struct {
	AccessToken  *string  // Bearer credential for API calls
	RefreshToken *string  // Credential used to mint a new access token
	AccountID    *string  // Stable user identifier
	DisplayName  *string  // "First Last" as returned by the backend
	Email        *string  // Account email
	AvatarURL    *string  // Profile picture
	Roles        []string // Authorization roles, possibly prefixed (e.g. ROLE_STAFF)
}

// Empty returns a session with no credentials and no roles.
func Empty() Session {
	return Session{Roles: []string{}}
}

// HasAccessToken reports whether an access token is present.
func (s Session) HasAccessToken() bool {
	return utils.Value(s.AccessToken) != ""
}

// HasRefreshToken reports whether a refresh token is present.
func (s Session) HasRefreshToken() bool {
	return utils.Value(s.RefreshToken) != ""
}

// Complete reports whether the session satisfies the persistence invariant:
// an access token is only ever stored together with an account id.
func (s Session) Complete() bool {
	return s.HasAccessToken() && utils.Value(s.AccountID) != ""
}

// Clone returns a deep copy of s with a non-nil Roles slice.
func (s Session) Clone() Session {
	return Session{
		AccessToken:  utils.ClonePtr(s.AccessToken),
		RefreshToken: utils.ClonePtr(s.RefreshToken),
		AccountID:    utils.ClonePtr(s.AccountID),
		DisplayName:  utils.ClonePtr(s.DisplayName),
		Email:        utils.ClonePtr(s.Email),
		AvatarURL:    utils.ClonePtr(s.AvatarURL),
		Roles:        utils.CloneStrings(s.Roles),
	}
}

// Equal reports whether two sessions hold the same values.
func (s Session) Equal(other Session) bool {
	if utils.Value(s.AccessToken) != utils.Value(other.AccessToken) ||
		utils.Value(s.RefreshToken) != utils.Value(other.RefreshToken) ||
		utils.Value(s.AccountID) != utils.Value(other.AccountID) ||
		utils.Value(s.DisplayName) != utils.Value(other.DisplayName) ||
		utils.Value(s.Email) != utils.Value(other.Email) ||
		utils.Value(s.AvatarURL) != utils.Value(other.AvatarURL) {
		return false
	}
	if len(s.Roles) != len(other.Roles) {
		return false
	}
	for i := range s.Roles {
		if s.Roles[i] != other.Roles[i] {
			return false
		}
	}
	return true
}

// FullName joins first and last name the way the backend's profile screen does.
func FullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}
