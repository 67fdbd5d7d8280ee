package goSession

import (
	"context"
	"errors"
	"strings"
)

// CreateAccount registers a password-backed account: unique email, bcrypt
// hash, and a LOCAL identity link. The raw password never leaves this call.
// An earlier attempt interrupted between the user insert and the link insert
// leaves the account without its LOCAL link; the duplicate path restores it.
func (e *Engine) CreateAccount(ctx context.Context, email, rawPassword string) (*User, error) {
	if e == nil || e.userStore == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidCredentials
	}

	existing, err := e.userStore.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, e.mapUserStoreErr(ctx, err)
	}
	if existing != nil {
		e.repairLocalIdentity(ctx, existing.ID, email)
		e.metricInc(MetricAccountDuplicate)
		e.emitAudit(ctx, auditEventAccountDuplicate, false, 0, "", "", ErrEmailInUse, func() map[string]string {
			return map[string]string{"email": maskEmail(email)}
		})
		return nil, ErrEmailInUse
	}

	hash, err := e.passwordHash.Hash(rawPassword)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := e.userStore.CreateUser(ctx, email, &hash)
	if err != nil {
		mapped := e.mapUserStoreErr(ctx, err)
		if errors.Is(mapped, ErrEmailInUse) {
			// Lost a creation race between the lookup and the insert.
			e.metricInc(MetricAccountDuplicate)
			e.emitAudit(ctx, auditEventAccountDuplicate, false, 0, "", "", ErrEmailInUse, func() map[string]string {
				return map[string]string{"email": maskEmail(email)}
			})
		}
		return nil, mapped
	}

	if _, err := e.userStore.CreateIdentity(ctx, IdentityLink{
		UserID:         user.ID,
		Provider:       ProviderLocal,
		ProviderUserID: email,
		Email:          email,
		EmailVerified:  false,
	}); err != nil {
		mapped := e.mapUserStoreErr(ctx, err)
		if !errors.Is(mapped, ErrEmailInUse) {
			return nil, mapped
		}
		// The link already exists; an interrupted earlier attempt or a
		// concurrent duplicate wrote it first.
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditEventAccountCreated, true, user.ID, "", "", nil, func() map[string]string {
		return map[string]string{"email": maskEmail(email)}
	})
	return user, nil
}

// Signin authenticates email/password credentials and issues a token pair.
// Unknown email, passwordless account, and wrong password all fail with the
// same error shape to block account enumeration.
func (e *Engine) Signin(ctx context.Context, email, rawPassword, deviceInfo, originAddr string) (*AuthResult, error) {
	if e == nil || e.userStore == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := e.userStore.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, e.mapUserStoreErr(ctx, err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, e.failSignin(ctx, email, originAddr)
	}

	match, err := e.passwordHash.Verify(rawPassword, *user.PasswordHash)
	if err != nil {
		e.warnf("goSession: stored password hash for user %d is unusable", user.ID)
		return nil, e.failSignin(ctx, email, originAddr)
	}
	if !match {
		return nil, e.failSignin(ctx, email, originAddr)
	}

	pair, err := e.issuePair(ctx, user.ID, user.Role, deviceInfo, originAddr)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSigninSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSigninSuccess, true, user.ID, pair.SessionID, originAddr, nil, nil)

	return &AuthResult{User: *user, Pair: pair}, nil
}

// repairLocalIdentity restores the LOCAL link for an account whose creation
// was interrupted after the user row was written. Best effort: the duplicate
// outcome is returned to the caller either way.
func (e *Engine) repairLocalIdentity(ctx context.Context, userID int64, email string) {
	link, err := e.userStore.FindIdentity(ctx, ProviderLocal, email)
	if err != nil || link != nil {
		return
	}
	if _, err := e.userStore.CreateIdentity(ctx, IdentityLink{
		UserID:         userID,
		Provider:       ProviderLocal,
		ProviderUserID: email,
		Email:          email,
		EmailVerified:  false,
	}); err != nil && !errors.Is(e.mapUserStoreErr(ctx, err), ErrEmailInUse) {
		e.warnf("goSession: restoring local identity link for user %d failed", userID)
	}
}

func (e *Engine) failSignin(ctx context.Context, email, originAddr string) error {
	e.metricInc(MetricSigninFailure)
	e.emitAudit(ctx, auditEventSigninFailure, false, 0, "", originAddr, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"email": maskEmail(email)}
	})
	return ErrInvalidCredentials
}
