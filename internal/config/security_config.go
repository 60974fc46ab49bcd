package config

import "time"

type SecurityConfig interface {
	GetEncryptStore() bool
	GetLogoutOnRevokedRefresh() bool
	GetRefreshSkew() time.Duration
}

type Security struct {
	values Values
}

var _ SecurityConfig = Security{}

func (s Security) GetEncryptStore() bool {
	return s.values.boolean("STORE_ENCRYPT", true)
}

// GetLogoutOnRevokedRefresh decides what a restore does when the backend
// rejects the saved refresh token. Off by default: the session is kept and the
// next API call surfaces the 401.
func (s Security) GetLogoutOnRevokedRefresh() bool {
	return s.values.boolean("LOGOUT_ON_REVOKED_REFRESH", false)
}

func (s Security) GetRefreshSkew() time.Duration {
	return s.values.duration("REFRESH_SKEW", time.Minute)
}
