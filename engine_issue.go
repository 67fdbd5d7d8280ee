package goSession

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/session"
)

// IssuePair mints an access/refresh pair for an already-authenticated user
// and persists the session record backing the refresh half. Issuance and
// persistence are one logical step: if the record cannot be written, no pair
// is returned. Prior sessions are untouched; a user may hold any number of
// concurrent sessions.
func (e *Engine) IssuePair(ctx context.Context, user User, deviceInfo, originAddr string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	pair, err := e.issuePair(ctx, user.ID, user.Role, deviceInfo, originAddr)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionIssued, true, user.ID, pair.SessionID, originAddr, nil, nil)
	return &pair, nil
}

func (e *Engine) issuePair(ctx context.Context, userID int64, role, deviceInfo, originAddr string) (TokenPair, error) {
	if deviceInfo == "" {
		deviceInfo = deviceInfoFromContext(ctx)
	}
	if originAddr == "" {
		originAddr = clientIPFromContext(ctx)
	}

	access, accessExpiry, err := e.jwtManager.CreateAccess(userID, role)
	if err != nil {
		return TokenPair{}, ErrTokenInvalid
	}

	sessionID, err := internal.NewSessionID()
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExpiry, err := e.jwtManager.CreateRefresh(userID, sessionID)
	if err != nil {
		return TokenPair{}, ErrTokenInvalid
	}

	rec := &session.Record{
		ID:         sessionID,
		UserID:     userID,
		SecretHash: internal.HashToken(refresh),
		ExpiresAt:  refreshExpiry,
		DeviceInfo: deviceInfo,
		OriginAddr: originAddr,
		CreatedAt:  time.Now(),
	}
	if err := e.sessionStore.Save(ctx, rec); err != nil {
		// Fail closed: a pair whose record did not persist must never reach
		// the caller.
		return TokenPair{}, e.mapSessionStoreErr(ctx, err)
	}

	return TokenPair{
		TokenType:        TokenTypeBearer,
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
		SessionID:        sessionID,
	}, nil
}
