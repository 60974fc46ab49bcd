package oauthmodel

import (
	"bytes"
	"encoding/json"
)

// Envelope is the backend's uniform response wrapper.
type Envelope[T any] struct {
	ResponseCode string `json:"responseCode"`
	Message      string `json:"message"`
	Data         *T     `json:"data"`
}

// AuthenticationData is the payload of both auth endpoints.
type AuthenticationData struct {
	Authenticated bool         `json:"authenticated"`
	Token         *string      `json:"token"`
	RefreshToken  *string      `json:"refreshToken"`
	AccountInfo   *AccountInfo `json:"accountInfo"`
}

// AccountInfo is the profile returned alongside the tokens.
type AccountInfo struct {
	ID        AccountID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	AvatarURL string    `json:"avatarUrl"`
	Roles     []string  `json:"roles"`
}

// AccountID accepts both JSON strings and numbers; some backend versions
// serialize the id as a number.
type AccountID string

func (id *AccountID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = AccountID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = AccountID(n.String())
	return nil
}
