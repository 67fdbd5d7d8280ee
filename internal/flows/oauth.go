package flows

import "context"

// ResolveFailureKind classifies identity resolution failures for root-level mapping.
type ResolveFailureKind int

const (
	// ResolveFailureNone is an exported constant or variable used by the session engine.
	ResolveFailureNone ResolveFailureKind = iota
	// ResolveFailureUnverified is an exported constant or variable used by the session engine.
	ResolveFailureUnverified
	// ResolveFailureUserMissing is an exported constant or variable used by the session engine.
	ResolveFailureUserMissing
	// ResolveFailureUserStore is an exported constant or variable used by the session engine.
	ResolveFailureUserStore
)

// ResolveOutcome records how the user was obtained, for audit trails.
type ResolveOutcome int

const (
	// ResolveOutcomeExisting is an exported constant or variable used by the session engine.
	ResolveOutcomeExisting ResolveOutcome = iota
	// ResolveOutcomeLinked is an exported constant or variable used by the session engine.
	ResolveOutcomeLinked
	// ResolveOutcomeCreated is an exported constant or variable used by the session engine.
	ResolveOutcomeCreated
)

// LinkRef is the minimal identity-link projection the flow needs.
type LinkRef struct {
	UserID int64
}

// ResolveResult carries the resolved user or failure metadata.
type ResolveResult struct {
	Failure ResolveFailureKind
	Err     error
	Outcome ResolveOutcome
	User    UserRef
}

// ResolveDeps captures identity resolution dependencies.
type ResolveDeps struct {
	FindIdentity    func(ctx context.Context, provider, providerUserID string) (*LinkRef, error)
	FindUserByEmail func(ctx context.Context, email string) (*UserRef, error)
	FindUserByID    func(ctx context.Context, id int64) (*UserRef, error)
	// CreateUser provisions a passwordless account; IsConflict recognizes the
	// store's unique-email violation.
	CreateUser     func(ctx context.Context, email string) (*UserRef, error)
	CreateIdentity func(ctx context.Context, userID int64, provider, providerUserID, email string, verified bool) error
	IsConflict     func(err error) bool
	Warn           func(format string, args ...any)
}

// RunResolveIdentity maps a provider-verified external identity onto a local
// user: an existing link wins, then account linking by verified email, then
// first-sight creation of a passwordless user. Concurrent first-sight races
// are resolved by retrying through the store's unique constraints instead of
// failing: a conflict means another instance created the row first.
func RunResolveIdentity(ctx context.Context, provider, providerUserID, email string, emailVerified bool, deps ResolveDeps) ResolveResult {
	if !emailVerified || email == "" {
		return ResolveResult{Failure: ResolveFailureUnverified}
	}

	const maxAttempts = 2
	for attempt := 0; attempt < maxAttempts; attempt++ {
		link, err := deps.FindIdentity(ctx, provider, providerUserID)
		if err != nil {
			return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
		}
		if link != nil {
			user, err := deps.FindUserByID(ctx, link.UserID)
			if err != nil {
				return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
			}
			if user == nil {
				// Link without owner is a data-integrity fault, not a race.
				return ResolveResult{Failure: ResolveFailureUserMissing}
			}
			return ResolveResult{Outcome: ResolveOutcomeExisting, User: *user}
		}

		user, err := deps.FindUserByEmail(ctx, email)
		if err != nil {
			return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
		}

		outcome := ResolveOutcomeLinked
		if user == nil {
			user, err = deps.CreateUser(ctx, email)
			if err != nil {
				if deps.IsConflict(err) {
					// Another instance created this email concurrently.
					continue
				}
				return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
			}
			outcome = ResolveOutcomeCreated
		}

		if err := deps.CreateIdentity(ctx, user.ID, provider, providerUserID, email, emailVerified); err != nil {
			if deps.IsConflict(err) {
				// Another instance linked this provider identity concurrently.
				continue
			}
			return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
		}

		return ResolveResult{Outcome: outcome, User: *user}
	}

	// Both attempts lost a creation race; one final link lookup settles it.
	link, err := deps.FindIdentity(ctx, provider, providerUserID)
	if err != nil {
		return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
	}
	if link == nil {
		return ResolveResult{Failure: ResolveFailureUserMissing}
	}
	user, err := deps.FindUserByID(ctx, link.UserID)
	if err != nil {
		return ResolveResult{Failure: ResolveFailureUserStore, Err: err}
	}
	if user == nil {
		return ResolveResult{Failure: ResolveFailureUserMissing}
	}
	return ResolveResult{Outcome: ResolveOutcomeExisting, User: *user}
}
