// Package jwt signs and verifies the two stateless token classes used by the
// session engine: short-lived access tokens carrying {userId, role} and
// longer-lived refresh tokens carrying {userId, sessionId}.
//
// The two classes are cryptographically separated. Under HS256 each class has
// its own secret; under Ed25519 both use one key pair but carry a distinct
// audience claim that is enforced on parse, so an access token can never be
// replayed as a refresh token or vice versa.
package jwt
