package sessions

import (
	"encoding/json"

	"github.com/jrsteele09/go-session-client/internal/utils"
)

// Persisted record keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyAccountID    = "account_id"
	KeyUserName     = "user_name"
	KeyUserEmail    = "user_email"
	KeyAvatarURL    = "avatar_url"
	KeyRoles        = "roles"
)

// Record flattens the session into the key/value form used by durable stores.
// Absent fields are omitted; roles are always written as a JSON list.
func (s Session) Record() map[string]string {
	record := make(map[string]string, 7)
	put := func(key string, v *string) {
		if value := utils.Value(v); value != "" {
			record[key] = value
		}
	}
	put(KeyAccessToken, s.AccessToken)
	put(KeyRefreshToken, s.RefreshToken)
	put(KeyAccountID, s.AccountID)
	put(KeyUserName, s.DisplayName)
	put(KeyUserEmail, s.Email)
	put(KeyAvatarURL, s.AvatarURL)

	roles := s.Roles
	if roles == nil {
		roles = []string{}
	}
	encoded, _ := json.Marshal(roles)
	record[KeyRoles] = string(encoded)
	return record
}

// FromRecord rebuilds a session from its key/value form. Missing keys map to
// nil fields and a missing or unreadable roles value maps to no roles.
func FromRecord(record map[string]string) Session {
	s := Session{
		AccessToken:  utils.NonEmpty(record[KeyAccessToken]),
		RefreshToken: utils.NonEmpty(record[KeyRefreshToken]),
		AccountID:    utils.NonEmpty(record[KeyAccountID]),
		DisplayName:  utils.NonEmpty(record[KeyUserName]),
		Email:        utils.NonEmpty(record[KeyUserEmail]),
		AvatarURL:    utils.NonEmpty(record[KeyAvatarURL]),
		Roles:        []string{},
	}

	if raw := record[KeyRoles]; raw != "" {
		var roles []string
		if err := json.Unmarshal([]byte(raw), &roles); err == nil && roles != nil {
			s.Roles = roles
		}
	}
	return s
}
