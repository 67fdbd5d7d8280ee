package goSession

import (
	"context"
	"time"
)

// Role names recognized by the engine. Authorization beyond a single role
// check is out of scope; callers needing richer policy should layer it on top.
const (
	// RoleUser is an exported constant or variable used by the session engine.
	RoleUser = "user"
	// RoleAdmin is an exported constant or variable used by the session engine.
	RoleAdmin = "admin"
)

// Provider identifies a federated identity provider.
//
// Provider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Provider string

const (
	// ProviderLocal is an exported constant or variable used by the session engine.
	ProviderLocal Provider = "local"
	// ProviderGoogle is an exported constant or variable used by the session engine.
	ProviderGoogle Provider = "google"
	// ProviderApple is an exported constant or variable used by the session engine.
	ProviderApple Provider = "apple"
	// ProviderGitHub is an exported constant or variable used by the session engine.
	ProviderGitHub Provider = "github"
	// ProviderLinkedIn is an exported constant or variable used by the session engine.
	ProviderLinkedIn Provider = "linkedin"
)

// User is the account record owned by the external credential store.
// PasswordHash is nil for accounts provisioned through a federated provider;
// password sign-in is disabled for those accounts.
type User struct {
	ID           int64
	Email        string
	PasswordHash *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdentityLink binds a local user to one federated provider identity.
// At most one link exists per (Provider, ProviderUserID) pair; several links
// may point at the same user when multiple providers are attached.
type IdentityLink struct {
	ID             int64
	UserID         int64
	Provider       Provider
	ProviderUserID string
	Email          string
	EmailVerified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserStore is the interface that callers must implement to integrate
// goSession with their user database. It is the external credential-store
// collaborator; goSession never persists user records itself.
//
// Lookup methods return (nil, nil) when no record matches. CreateUser must
// enforce a unique-email constraint and return [ErrEmailInUse] on violation;
// CreateIdentity must enforce uniqueness of (Provider, ProviderUserID).
// Any other error is treated as a storage fault and surfaced as
// [ErrUserStoreUnavailable].
type UserStore interface {
	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, email string, passwordHash *string) (*User, error)
	FindIdentity(ctx context.Context, provider Provider, providerUserID string) (*IdentityLink, error)
	CreateIdentity(ctx context.Context, link IdentityLink) (*IdentityLink, error)
}

// TokenPair is one issued access/refresh credential pair. SessionID names the
// server-side record backing the refresh half; the raw refresh token itself is
// never stored anywhere.
type TokenPair struct {
	TokenType        string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	SessionID        string
}

// TokenTypeBearer is an exported constant or variable used by the session engine.
const TokenTypeBearer = "Bearer"

// AuthResult is returned by sign-in flows: the resolved user plus the token
// pair issued for this session. The user record is never mutated to carry
// token state.
type AuthResult struct {
	User User
	Pair TokenPair
}

// AccessIdentity is the decoded identity of a validated access token.
type AccessIdentity struct {
	UserID int64
	Role   string
}

// RequireRole checks the identity against a required role and returns
// [ErrPermissionDenied] when it does not carry it. A nil identity never
// carries any role.
func (id *AccessIdentity) RequireRole(role string) error {
	if id == nil || id.Role != role {
		return ErrPermissionDenied
	}
	return nil
}

// SessionInfo describes one active session for enumeration. It deliberately
// excludes hash material and the raw token.
type SessionInfo struct {
	SessionID  string
	DeviceInfo string
	OriginAddr string
	CreatedAt  time.Time
}
