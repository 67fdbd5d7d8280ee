package goSession

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/jwt"
)

// Validate verifies an access token and returns the identity it carries.
// The hot path: no store round trip, signature and expiry only. Revocation
// takes effect no later than the next refresh, bounded by the access TTL.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*AccessIdentity, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	_ = ctx

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	e.metricInc(MetricValidateSuccess)
	return &AccessIdentity{
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}
