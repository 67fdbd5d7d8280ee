package goSession

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/goSession/internal/flows"
)

// OAuthSignin signs in a user through an external identity provider whose
// assertion the caller has already verified. Resolution order: an existing
// identity link wins; otherwise a user with the same verified email gets the
// link attached; otherwise a passwordless account is provisioned. Unverified
// or empty emails are rejected as [ErrInvalidCredentials] so a provider
// assertion can never claim an address its owner has not proven.
func (e *Engine) OAuthSignin(ctx context.Context, provider Provider, providerUserID, email string, emailVerified bool, deviceInfo, originAddr string) (*AuthResult, error) {
	if e == nil || e.sessionStore == nil || e.userStore == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	providerUserID = strings.TrimSpace(providerUserID)
	if provider == "" || provider == ProviderLocal || providerUserID == "" {
		return nil, e.failOAuthSignin(ctx, provider, email, originAddr, "malformed_assertion")
	}

	result := flows.RunResolveIdentity(ctx, string(provider), providerUserID, email, emailVerified, flows.ResolveDeps{
		FindIdentity: func(ctx context.Context, prov, extID string) (*flows.LinkRef, error) {
			link, err := e.userStore.FindIdentity(ctx, Provider(prov), extID)
			if err != nil {
				return nil, err
			}
			if link == nil {
				return nil, nil
			}
			return &flows.LinkRef{UserID: link.UserID}, nil
		},
		FindUserByEmail: func(ctx context.Context, email string) (*flows.UserRef, error) {
			return e.lookupUserRef(ctx, func(ctx context.Context) (*User, error) {
				return e.userStore.FindUserByEmail(ctx, email)
			})
		},
		FindUserByID: func(ctx context.Context, id int64) (*flows.UserRef, error) {
			return e.lookupUserRef(ctx, func(ctx context.Context) (*User, error) {
				return e.userStore.FindUserByID(ctx, id)
			})
		},
		CreateUser: func(ctx context.Context, email string) (*flows.UserRef, error) {
			user, err := e.userStore.CreateUser(ctx, email, nil)
			if err != nil {
				return nil, err
			}
			return &flows.UserRef{ID: user.ID, Email: user.Email, Role: user.Role}, nil
		},
		CreateIdentity: func(ctx context.Context, userID int64, prov, extID, email string, verified bool) error {
			_, err := e.userStore.CreateIdentity(ctx, IdentityLink{
				UserID:         userID,
				Provider:       Provider(prov),
				ProviderUserID: extID,
				Email:          email,
				EmailVerified:  verified,
			})
			return err
		},
		IsConflict: func(err error) bool {
			return errors.Is(err, ErrEmailInUse)
		},
		Warn: e.warnf,
	})

	switch result.Failure {
	case flows.ResolveFailureNone:
		// Resolved below.
	case flows.ResolveFailureUnverified:
		return nil, e.failOAuthSignin(ctx, provider, email, originAddr, "unverified_email")
	case flows.ResolveFailureUserMissing:
		return nil, e.failOAuthSignin(ctx, provider, email, originAddr, "identity_unresolvable")
	default:
		e.metricInc(MetricOAuthSigninFailure)
		return nil, e.mapUserStoreErr(ctx, result.Err)
	}

	switch result.Outcome {
	case flows.ResolveOutcomeCreated:
		e.metricInc(MetricOAuthUserCreated)
		e.emitAudit(ctx, auditEventOAuthUserCreated, true, result.User.ID, "", originAddr, nil, func() map[string]string {
			return map[string]string{"provider": string(provider), "email": maskEmail(email)}
		})
	case flows.ResolveOutcomeLinked:
		e.metricInc(MetricOAuthUserLinked)
		e.emitAudit(ctx, auditEventOAuthUserLinked, true, result.User.ID, "", originAddr, nil, func() map[string]string {
			return map[string]string{"provider": string(provider), "email": maskEmail(email)}
		})
	}

	user, err := e.userStore.FindUserByID(ctx, result.User.ID)
	if err != nil {
		e.metricInc(MetricOAuthSigninFailure)
		return nil, e.mapUserStoreErr(ctx, err)
	}
	if user == nil {
		return nil, e.failOAuthSignin(ctx, provider, email, originAddr, "identity_unresolvable")
	}

	pair, err := e.issuePair(ctx, user.ID, user.Role, deviceInfo, originAddr)
	if err != nil {
		e.metricInc(MetricOAuthSigninFailure)
		return nil, err
	}

	e.metricInc(MetricOAuthSigninSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventOAuthSigninSuccess, true, user.ID, pair.SessionID, originAddr, nil, func() map[string]string {
		return map[string]string{"provider": string(provider)}
	})

	return &AuthResult{User: *user, Pair: pair}, nil
}

// failOAuthSignin records the real failure shape for operators and returns the
// uniform credential error to the caller.
func (e *Engine) failOAuthSignin(ctx context.Context, provider Provider, email, originAddr, reason string) error {
	e.metricInc(MetricOAuthSigninFailure)
	e.emitAudit(ctx, auditEventOAuthSigninFailure, false, 0, "", originAddr, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"provider": string(provider),
			"email":    maskEmail(email),
			"reason":   reason,
		}
	})
	return ErrInvalidCredentials
}

func (e *Engine) lookupUserRef(ctx context.Context, find func(context.Context) (*User, error)) (*flows.UserRef, error) {
	user, err := find(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &flows.UserRef{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}
