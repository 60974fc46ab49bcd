package config

import "time"

type BackendConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRedirectURI() string
}

type Backend struct {
	values Values
}

var _ BackendConfig = Backend{}

// GetBaseURL returns the REST backend root, e.g. "https://api.example.com"
func (b Backend) GetBaseURL() string {
	return b.values.lookup("BACKEND_URL", "http://localhost:8080")
}

func (b Backend) GetRequestTimeout() time.Duration {
	return b.values.duration("REQUEST_TIMEOUT", 30*time.Second)
}

// GetRefreshTimeout bounds the validation refresh performed while restoring a session.
func (b Backend) GetRefreshTimeout() time.Duration {
	return b.values.duration("REFRESH_TIMEOUT", 30*time.Second)
}

func (b Backend) GetRedirectURI() string {
	return b.values.lookup("REDIRECT_URI", "http://localhost:3000/callback")
}
