// Package goSession provides a credential and session lifecycle engine with JWT
// access tokens, rotating JWT refresh tokens, hashed server-side session records,
// and federated identity resolution.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines and from multiple processes after initialization
// through [Builder.Build]. The engine itself holds no session state; all shared
// mutable state lives behind the [session.Store] interface.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (TokenPair, SessionInfo, AuthResult, User). Flow orchestration lives
// under internal/ and is never exported. Storage backends live in the session
// sub-package and are interchangeable: a Redis-backed store and a GORM/Postgres
// store ship with the module, both honoring the same atomic conditional-revoke
// contract.
//
// # What this package must NOT do
//
//   - Expose raw refresh token material through any read path; stores hold only
//     one-way hashes.
//   - Distinguish failure causes to callers on authentication paths. Unknown
//     email, wrong password, forged or replayed refresh tokens all surface as
//     [ErrInvalidCredentials].
//   - Assume a storage backend beyond the [session.Store] contract. The only
//     correctness-critical lock point is the store's conditional revoke; no
//     in-process mutex guards rotation.
//
// # Security contract
//
// Refresh tokens are single-use. Presenting a refresh token whose session record
// is already revoked is treated as a theft signal and revokes every session the
// owning user has. A hash mismatch on a live record fails the call without mass
// revocation; the two signals are deliberately not conflated.
package goSession
