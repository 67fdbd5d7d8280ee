package session

import (
	"context"
	"errors"
)

// ErrNotFound is an exported constant or variable used by the session engine.
var ErrNotFound = errors.New("session record not found")

// ErrUnavailable is an exported constant or variable used by the session engine.
var ErrUnavailable = errors.New("session backend unavailable")

// RevokeOutcome classifies the result of a conditional revoke.
//
// RevokeOutcome instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RevokeOutcome int

const (
	// RevokeNotFound is an exported constant or variable used by the session engine.
	RevokeNotFound RevokeOutcome = iota
	// RevokeDone is an exported constant or variable used by the session engine.
	RevokeDone
	// RevokeAlreadyRevoked is an exported constant or variable used by the session engine.
	RevokeAlreadyRevoked
)

// Store is the contract session backends must honor. All methods are safe for
// concurrent use from multiple goroutines and multiple engine instances.
type Store interface {
	// Save persists a new record. Saving never invalidates other records for
	// the same user; a user may hold any number of concurrent sessions.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record for (userID, id) or ErrNotFound. Revoked records
	// remain readable until expiry so replay of a rotated token can be told
	// apart from a token that never existed.
	Get(ctx context.Context, userID int64, id string) (*Record, error)

	// Revoke flips the revoked flag for (userID, id) if and only if it is not
	// already set. The check-and-set must be atomic per record ID: two
	// concurrent calls for the same live record observe exactly one RevokeDone
	// and one RevokeAlreadyRevoked. This is the sole correctness-critical lock
	// point in the system.
	Revoke(ctx context.Context, userID int64, id string) (RevokeOutcome, error)

	// RevokeAllForUser marks every non-revoked record for userID revoked in
	// one logically atomic sweep. Idempotent; a user with zero records is not
	// an error. Records created after the sweep started are intentionally not
	// covered; revocation is a point-in-time operation, not a barrier.
	RevokeAllForUser(ctx context.Context, userID int64) error

	// ListActive returns the non-revoked, non-expired records for userID.
	ListActive(ctx context.Context, userID int64) ([]*Record, error)

	// DeleteExpired reclaims storage held by records past expiry and returns
	// how many it removed. Purely a reclamation pass: expired tokens already
	// fail signature verification, so correctness never depends on it.
	DeleteExpired(ctx context.Context) (int, error)

	// Ping reports backend reachability.
	Ping(ctx context.Context) error
}
