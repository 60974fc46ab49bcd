package auth

import "github.com/jrsteele09/go-session-client/internal/utils"

// State is the lifecycle position of the session service.
type State int32

const (
	StateSignedOut State = iota
	StateRestoring
	StateSignedIn
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateSignedOut:
		return "signed_out"
	case StateRestoring:
		return "restoring"
	case StateSignedIn:
		return "signed_in"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Result is what UI layers see: success with the session's roles, or a
// message ready for display. Err keeps the cause for logging and tests.
type Result struct {
	Roles   []string
	Message string
	Err     error
	ok      bool
}

func Success(roles []string) Result {
	return Result{Roles: utils.CloneStrings(roles), ok: true}
}

func Failure(message string, err error) Result {
	return Result{Message: message, Err: err}
}

func (r Result) OK() bool {
	return r.ok
}
