// Package middleware exposes HTTP middleware adapters built on top of
// goSession.Engine validation.
//
// # Guards
//
//   - [Guard] — bearer-token validation, identity injected into the context.
//   - [RequireRole] — role gate layered inside Guard.
//
// Guard reads the Authorization header, calls Engine.Validate, and injects the
// decoded identity into the request context for handlers and inner middleware.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Validate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the session store (Engine handles I/O).
//   - Make authorization decisions beyond the single role check exposed here.
package middleware
