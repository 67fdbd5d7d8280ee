package test

import (
	"context"
	"net/http"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/MrEthical07/goSession/session"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goSession.New
	_ = goSession.DefaultConfig
	_ = goSession.ConfigFromEnv

	var _ *goSession.Engine
	var _ *goSession.Builder
	var _ goSession.Config
	var _ goSession.AuthResult
	var _ goSession.TokenPair
	var _ goSession.AccessIdentity
	var _ goSession.SessionInfo
	var _ goSession.User
	var _ goSession.IdentityLink
	var _ goSession.UserStore
	var _ goSession.AuditSink
	var _ goSession.Provider = goSession.ProviderGoogle

	var _ error = goSession.ErrInvalidCredentials
	var _ error = goSession.ErrEmailInUse
	var _ error = goSession.ErrSessionNotFound
	var _ error = goSession.ErrTokenInvalid
	var _ error = goSession.ErrTokenExpired
	var _ error = goSession.ErrRefreshReuse
	var _ error = goSession.ErrStoreUnavailable
	var _ error = goSession.ErrTimeout

	var _ session.Store = (*session.RedisStore)(nil)
	var _ session.Store = (*session.SQLStore)(nil)

	var _ func(*goSession.Engine) func(http.Handler) http.Handler = middleware.Guard
	var _ func(string) func(http.Handler) http.Handler = middleware.RequireRole
	var _ func(context.Context) (*goSession.AccessIdentity, bool) = middleware.AccessIdentityFromContext

	var _ func(*goSession.Engine, context.Context, string, string) (*goSession.User, error) = (*goSession.Engine).CreateAccount
	var _ func(*goSession.Engine, context.Context, string, string, string, string) (*goSession.AuthResult, error) = (*goSession.Engine).Signin
	var _ func(*goSession.Engine, context.Context, string, string, string) (*goSession.TokenPair, error) = (*goSession.Engine).Refresh
	var _ func(*goSession.Engine, context.Context, string) (*goSession.AccessIdentity, error) = (*goSession.Engine).Validate
	var _ func(*goSession.Engine, context.Context, int64, string) error = (*goSession.Engine).Logout
	var _ func(*goSession.Engine, context.Context, int64) error = (*goSession.Engine).LogoutAll
	var _ func(*goSession.Engine, context.Context, int64) ([]goSession.SessionInfo, error) = (*goSession.Engine).ActiveSessions
}
