package sessions

import "context"

// Repo is the durable token store. It survives process restarts and is the
// source of truth for the session between runs.
type Repo interface {
	// Read returns the stored session. A store with nothing in it yields an
	// empty session and no error; an error means the store could not be read.
	Read(ctx context.Context) (Session, error)

	// Write replaces the whole stored record in one atomic step.
	Write(ctx context.Context, s Session) error

	// Clear removes every stored key in one atomic step.
	Clear(ctx context.Context) error
}
