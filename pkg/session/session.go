// Package session provides TTL-bounded persistence for simulation sessions.
// It defines the Store contract and the Session record that crosses it, plus
// the in-memory implementation. pkg/session/postgres provides the
// PostgreSQL-backed implementation.
package session

import (
	"bytes"
	"context"
	"time"
)

// DefaultTTL is the process-wide default idle lifetime for a session.
const DefaultTTL = 30 * time.Minute

// Session is the persisted record for one simulation session. The model
// instance itself travels opaquely in State, in the form produced by the
// model's MarshalState; ModelName identifies which factory rehydrates it.
type Session struct {
	// ID is the unique session identifier. Immutable.
	ID string

	// ModelName is the model-type name the session was created from. It
	// never changes after creation.
	ModelName string

	// State is the model's serialized form.
	State []byte

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// LastActiveAt is the most recent access timestamp.
	LastActiveAt time.Time

	// ExpiresAt is when the session expires if not touched again.
	ExpiresAt time.Time
}

// Clone returns an independent copy of s. Cloning nil yields nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	dup := *s
	dup.State = bytes.Clone(s.State)
	return &dup
}

// Filter narrows List results.
type Filter struct {
	// ModelName restricts results to sessions of one model type when
	// non-empty.
	ModelName string

	// Limit caps the number of sessions returned when positive.
	Limit int
}

// Store defines the persistence contract for simulation sessions.
//
// Get distinguishes absence from failure: a missing, deleted, or expired
// session yields (nil, nil); a non-nil error always means the backend itself
// failed. Callers therefore never mistake a storage outage for "session does
// not exist".
type Store interface {
	// Put unconditionally stores sess, replacing any prior entry. The store
	// refreshes LastActiveAt and sets ExpiresAt to now plus the store TTL;
	// CreatedAt survives overwrites.
	Put(ctx context.Context, sess *Session) error

	// Get retrieves a session by ID. Returns nil, nil if not found or
	// expired; an entry observed to be expired is removed. The returned
	// record is an independent copy.
	Get(ctx context.Context, id string) (*Session, error)

	// Touch updates LastActiveAt and extends ExpiresAt by the store's TTL.
	// Touching an absent session is a no-op.
	Touch(ctx context.Context, id string) error

	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns non-expired sessions matching f, most recently active
	// first.
	List(ctx context.Context, f Filter) ([]*Session, error)

	// Cleanup removes expired sessions and reports how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Close stops background routines and releases resources.
	Close() error
}
