package goSession

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailInUse is an exported constant or variable used by the session engine.
	ErrEmailInUse = errors.New("email already in use")
	// ErrUserNotFound is an exported constant or variable used by the session engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is an exported constant or variable used by the session engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTokenInvalid is an exported constant or variable used by the session engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the session engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshReuse is an exported constant or variable used by the session engine.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrStoreUnavailable is an exported constant or variable used by the session engine.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrUserStoreUnavailable is an exported constant or variable used by the session engine.
	ErrUserStoreUnavailable = errors.New("user store unavailable")
	// ErrTimeout is an exported constant or variable used by the session engine.
	ErrTimeout = errors.New("operation deadline exceeded")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not fully initialized")
	// ErrPermissionDenied is an exported constant or variable used by the session engine.
	ErrPermissionDenied = errors.New("permission denied")
)
