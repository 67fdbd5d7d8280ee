package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
)

// Refresh rotates a refresh token: the presented token's session record is
// revoked and a fresh pair is issued for the same user. Refresh tokens are
// single-use; presenting one whose record is already revoked revokes every
// session the user has before the call fails. All authentication failure
// shapes surface as [ErrInvalidCredentials].
func (e *Engine) Refresh(ctx context.Context, refreshToken, deviceInfo, originAddr string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil || e.userStore == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	start := time.Now()
	result := flows.RunRefresh(ctx, refreshToken, deviceInfo, originAddr, flows.RefreshDeps{
		DecodeRefresh: func(token string) (int64, string, error) {
			claims, err := e.jwtManager.ParseRefresh(token)
			if err != nil {
				return 0, "", err
			}
			return claims.UserID, claims.SessionID, nil
		},
		HashToken: internal.HashToken,
		HashEqual: internal.HashEqual,
		LookupUser: func(ctx context.Context, userID int64) (*flows.UserRef, error) {
			user, err := e.userStore.FindUserByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, nil
			}
			return &flows.UserRef{ID: user.ID, Email: user.Email, Role: user.Role}, nil
		},
		IssuePair: func(ctx context.Context, user flows.UserRef, deviceInfo, originAddr string) (flows.TokenPair, error) {
			pair, err := e.issuePair(ctx, user.ID, user.Role, deviceInfo, originAddr)
			if err != nil {
				return flows.TokenPair{}, err
			}
			return flows.TokenPair{
				AccessToken:      pair.AccessToken,
				AccessExpiresAt:  pair.AccessExpiresAt,
				RefreshToken:     pair.RefreshToken,
				RefreshExpiresAt: pair.RefreshExpiresAt,
				SessionID:        pair.SessionID,
			}, nil
		},
		SessionStore: e.sessionStore,
		Now:          time.Now,
		Warn:         e.warnf,
	})
	e.metricObserve(MetricRefreshLatency, time.Since(start))

	switch result.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.metricInc(MetricSessionCreated)
		e.metricInc(MetricSessionRevoked)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, result.UserID, result.Pair.SessionID, originAddr, nil, func() map[string]string {
			return map[string]string{"rotated_from": result.SessionID}
		})
		pair := TokenPair{
			TokenType:        TokenTypeBearer,
			AccessToken:      result.Pair.AccessToken,
			AccessExpiresAt:  result.Pair.AccessExpiresAt,
			RefreshToken:     result.Pair.RefreshToken,
			RefreshExpiresAt: result.Pair.RefreshExpiresAt,
			SessionID:        result.Pair.SessionID,
		}
		return &pair, nil

	case flows.RefreshFailureReplay:
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricReplayDetected)
		e.emitAudit(ctx, auditEventReplayDetected, false, result.UserID, result.SessionID, originAddr, ErrRefreshReuse, nil)
		return nil, ErrInvalidCredentials

	case flows.RefreshFailureDecode:
		e.metricInc(MetricRefreshFailure)
		err := ErrTokenInvalid
		if jwtErrIsExpired(result.Err) {
			err = ErrTokenExpired
		}
		e.emitAudit(ctx, auditEventRefreshInvalid, false, 0, "", originAddr, err, nil)
		return nil, ErrInvalidCredentials

	case flows.RefreshFailureSessionNotFound:
		// Never existed, expired, or swept; indistinguishable to the caller.
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.UserID, result.SessionID, originAddr, ErrSessionNotFound, nil)
		return nil, ErrInvalidCredentials

	case flows.RefreshFailureHashMismatch:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.UserID, result.SessionID, originAddr, ErrTokenInvalid, func() map[string]string {
			return map[string]string{"reason": "hash_mismatch"}
		})
		return nil, ErrInvalidCredentials

	case flows.RefreshFailureUserMissing:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, result.UserID, result.SessionID, originAddr, ErrUserNotFound, nil)
		return nil, ErrInvalidCredentials

	case flows.RefreshFailureUserStore:
		e.metricInc(MetricRefreshFailure)
		return nil, e.mapUserStoreErr(ctx, result.Err)

	case flows.RefreshFailureSessionStore:
		e.metricInc(MetricRefreshFailure)
		return nil, e.mapSessionStoreErr(ctx, result.Err)

	default:
		// RefreshFailureIssue: issuePair already mapped the error.
		e.metricInc(MetricRefreshFailure)
		return nil, result.Err
	}
}

func jwtErrIsExpired(err error) bool {
	return errors.Is(err, jwt.ErrExpired)
}
