package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	// RefreshFailureNone is an exported constant or variable used by the session engine.
	RefreshFailureNone RefreshFailureKind = iota
	// RefreshFailureDecode is an exported constant or variable used by the session engine.
	RefreshFailureDecode
	// RefreshFailureSessionNotFound is an exported constant or variable used by the session engine.
	RefreshFailureSessionNotFound
	// RefreshFailureReplay is an exported constant or variable used by the session engine.
	RefreshFailureReplay
	// RefreshFailureHashMismatch is an exported constant or variable used by the session engine.
	RefreshFailureHashMismatch
	// RefreshFailureUserMissing is an exported constant or variable used by the session engine.
	RefreshFailureUserMissing
	// RefreshFailureUserStore is an exported constant or variable used by the session engine.
	RefreshFailureUserStore
	// RefreshFailureSessionStore is an exported constant or variable used by the session engine.
	RefreshFailureSessionStore
	// RefreshFailureIssue is an exported constant or variable used by the session engine.
	RefreshFailureIssue
)

// UserRef is the minimal user projection the refresh flow needs to re-issue
// a pair.
type UserRef struct {
	ID    int64
	Email string
	Role  string
}

// TokenPair mirrors the root package pair without importing it.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	SessionID        string
}

// RefreshResult carries either the issued token pair or failure metadata.
type RefreshResult struct {
	Failure   RefreshFailureKind
	Err       error
	UserID    int64
	SessionID string
	Pair      TokenPair
}

// RefreshSessionStore is the slice of the session store the flow touches.
type RefreshSessionStore interface {
	Get(ctx context.Context, userID int64, id string) (*session.Record, error)
	Revoke(ctx context.Context, userID int64, id string) (session.RevokeOutcome, error)
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	DecodeRefresh func(token string) (userID int64, sessionID string, err error)
	HashToken     func(token string) [32]byte
	HashEqual     func(a, b [32]byte) bool
	LookupUser    func(ctx context.Context, userID int64) (*UserRef, error)
	IssuePair     func(ctx context.Context, user UserRef, deviceInfo, originAddr string) (TokenPair, error)
	SessionStore  RefreshSessionStore
	Now           func() time.Time
	Warn          func(format string, args ...any)
}

// RunRefresh executes single-use rotation: validate the presented token
// against its record, conditionally revoke the record, and issue a fresh pair
// for the same user. A token whose record is already revoked is a theft
// signal and revokes every session the user has before the call fails.
func RunRefresh(ctx context.Context, refreshToken, deviceInfo, originAddr string, deps RefreshDeps) RefreshResult {
	userID, sessionID, err := deps.DecodeRefresh(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureDecode, Err: err}
	}

	rec, err := deps.SessionStore.Get(ctx, userID, sessionID)
	if err != nil {
		if isNotFound(err) {
			return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: err, UserID: userID, SessionID: sessionID}
		}
		return RefreshResult{Failure: RefreshFailureSessionStore, Err: err, UserID: userID, SessionID: sessionID}
	}
	if rec.Expired(deps.Now()) {
		return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: session.ErrNotFound, UserID: userID, SessionID: sessionID}
	}

	if rec.Revoked {
		return refreshReplay(ctx, userID, sessionID, deps)
	}

	// Mismatch on a live record most likely means a forged or guessed id,
	// not reuse by a thief holding a rotated token. No mass revocation.
	if !deps.HashEqual(rec.SecretHash, deps.HashToken(refreshToken)) {
		return RefreshResult{Failure: RefreshFailureHashMismatch, UserID: userID, SessionID: sessionID}
	}

	outcome, err := deps.SessionStore.Revoke(ctx, userID, sessionID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureSessionStore, Err: err, UserID: userID, SessionID: sessionID}
	}
	switch outcome {
	case session.RevokeDone:
		// Sole winner of the conditional write; proceed to issuance.
	case session.RevokeAlreadyRevoked:
		// Lost a concurrent race for the same record: reuse by definition.
		return refreshReplay(ctx, userID, sessionID, deps)
	default:
		return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: session.ErrNotFound, UserID: userID, SessionID: sessionID}
	}

	user, err := deps.LookupUser(ctx, userID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureUserStore, Err: err, UserID: userID, SessionID: sessionID}
	}
	if user == nil {
		return RefreshResult{Failure: RefreshFailureUserMissing, UserID: userID, SessionID: sessionID}
	}

	pair, err := deps.IssuePair(ctx, *user, deviceInfo, originAddr)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssue, Err: err, UserID: userID, SessionID: sessionID}
	}

	return RefreshResult{
		Failure:   RefreshFailureNone,
		UserID:    userID,
		SessionID: sessionID,
		Pair:      pair,
	}
}

func refreshReplay(ctx context.Context, userID int64, sessionID string, deps RefreshDeps) RefreshResult {
	if err := deps.SessionStore.RevokeAllForUser(ctx, userID); err != nil {
		if deps.Warn != nil {
			deps.Warn("goSession: mass revocation after replay failed for user %d", userID)
		}
		return RefreshResult{Failure: RefreshFailureSessionStore, Err: err, UserID: userID, SessionID: sessionID}
	}
	return RefreshResult{Failure: RefreshFailureReplay, UserID: userID, SessionID: sessionID}
}

func isNotFound(err error) bool {
	return errors.Is(err, session.ErrNotFound)
}
