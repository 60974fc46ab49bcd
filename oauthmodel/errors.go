package oauthmodel

import "errors"

var (
	ErrMissingCode         = errors.New("authorization code is required")
	ErrMissingRedirectURI  = errors.New("redirect uri is required")
	ErrMissingRefreshToken = errors.New("refresh token is required")
)
