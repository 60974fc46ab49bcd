package gateway

import (
	"fmt"
	"net/http"

	errs "github.com/jrsteele09/go-session-client/internal/errors"
)

// BackendRejectedError is returned when the backend answers with a non-2xx
// status, or with a 2xx envelope that says the user is not authenticated.
type BackendRejectedError struct {
	StatusCode   int
	ResponseCode string
	Message      string
}

func (e *BackendRejectedError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsRejected reports whether err is a backend rejection and returns it.
func IsRejected(err error) (*BackendRejectedError, bool) {
	var rejected *BackendRejectedError
	if errs.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// IsRevoked reports whether the backend refused the credential itself (401/403),
// as opposed to failing for some other reason.
func IsRevoked(err error) bool {
	rejected, ok := IsRejected(err)
	return ok && (rejected.StatusCode == http.StatusUnauthorized || rejected.StatusCode == http.StatusForbidden)
}

// IsTransient reports whether err is a transport failure or timeout.
func IsTransient(err error) bool {
	return errs.Is(err, errs.ErrNetwork)
}
