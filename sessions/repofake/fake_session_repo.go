package repofake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-session-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo with injectable failures.
type FakeSessionRepo struct {
	record map[string]string
	lock   sync.RWMutex

	ReadErr  error
	WriteErr error
	ClearErr error

	Writes int
	Clears int

	readGate    chan struct{}
	readStarted chan struct{}
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{readStarted: make(chan struct{}, 16)}
}

// BlockRead makes Read take its snapshot and then wait until the returned
// function is called, like a slow disk.
func (sr *FakeSessionRepo) BlockRead() (release func()) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	gate := make(chan struct{})
	sr.readGate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// ReadStarted receives a value each time a blocked Read has taken its snapshot.
func (sr *FakeSessionRepo) ReadStarted() <-chan struct{} {
	return sr.readStarted
}

// Seed stores s without counting it as a write.
func (sr *FakeSessionRepo) Seed(s sessions.Session) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.record = s.Record()
}

func (sr *FakeSessionRepo) Read(_ context.Context) (sessions.Session, error) {
	sr.lock.RLock()
	readErr, snapshot, gate := sr.ReadErr, sessions.FromRecord(sr.record), sr.readGate
	sr.lock.RUnlock()

	if gate != nil {
		select {
		case sr.readStarted <- struct{}{}:
		default:
		}
		<-gate
	}
	if readErr != nil {
		return sessions.Empty(), readErr
	}
	return snapshot, nil
}

func (sr *FakeSessionRepo) Write(_ context.Context, s sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if sr.WriteErr != nil {
		return sr.WriteErr
	}
	sr.record = s.Record()
	sr.Writes++
	return nil
}

// Clear removes the record. With ClearErr set it fails and leaves the record
// in place, like a disk that refused the delete.
func (sr *FakeSessionRepo) Clear(_ context.Context) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Clears++
	if sr.ClearErr != nil {
		return sr.ClearErr
	}
	sr.record = nil
	return nil
}

// Stored returns the current record as a session, bypassing ReadErr.
func (sr *FakeSessionRepo) Stored() sessions.Session {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sessions.FromRecord(sr.record)
}

// Counts returns the number of successful writes and attempted clears.
func (sr *FakeSessionRepo) Counts() (writes, clears int) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.Writes, sr.Clears
}

var ErrFakeDisk = errors.New("fake disk failure")
