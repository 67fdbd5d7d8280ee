package goSession

import (
	"context"
	"errors"
	"strconv"

	"github.com/MrEthical07/goSession/session"
)

// Logout revokes one session. It is idempotent: revoking a session that is
// already revoked, expired, or unknown succeeds without effect, so a client
// retrying a logout never sees an error for work already done.
func (e *Engine) Logout(ctx context.Context, userID int64, sessionID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	outcome, err := e.sessionStore.Revoke(ctx, userID, sessionID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return e.mapSessionStoreErr(ctx, err)
	}

	if outcome == session.RevokeDone {
		e.metricInc(MetricSessionRevoked)
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogoutSession, true, userID, sessionID, "", nil, func() map[string]string {
		return map[string]string{"outcome": revokeOutcomeLabel(outcome)}
	})
	return nil
}

// LogoutAll revokes every session the user has, revoked or not. A user with
// zero sessions is not an error.
func (e *Engine) LogoutAll(ctx context.Context, userID int64) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	if err := e.sessionStore.RevokeAllForUser(ctx, userID); err != nil {
		return e.mapSessionStoreErr(ctx, err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, "", "", nil, nil)
	return nil
}

// ActiveSessions lists the user's live sessions for a "your devices" view.
// Revoked and expired records are excluded; hash material never leaves the
// store.
func (e *Engine) ActiveSessions(ctx context.Context, userID int64) ([]SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	records, err := e.sessionStore.ListActive(ctx, userID)
	if err != nil {
		return nil, e.mapSessionStoreErr(ctx, err)
	}

	infos := make([]SessionInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, SessionInfo{
			SessionID:  rec.ID,
			DeviceInfo: rec.DeviceInfo,
			OriginAddr: rec.OriginAddr,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return infos, nil
}

// SweepExpired removes session records past their expiry and reports how many
// were deleted. Sweeping is storage reclamation only: expired records are
// already unusable for refresh, so scheduling is a cost decision, not a
// security one.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	deleted, err := e.sessionStore.DeleteExpired(ctx)
	if err != nil {
		return 0, e.mapSessionStoreErr(ctx, err)
	}

	e.metricAdd(MetricSweepDeleted, uint64(deleted))
	e.emitAudit(ctx, auditEventSweepExpired, true, 0, "", "", nil, func() map[string]string {
		return map[string]string{"deleted": strconv.Itoa(deleted)}
	})
	return deleted, nil
}

func revokeOutcomeLabel(outcome session.RevokeOutcome) string {
	switch outcome {
	case session.RevokeDone:
		return "revoked"
	case session.RevokeAlreadyRevoked:
		return "already_revoked"
	default:
		return "not_found"
	}
}
