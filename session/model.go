package session

import "time"

// Record defines a public type used by goSession APIs.
//
// Record is the persisted form of one outstanding refresh grant. ID is a
// time-ordered, lexicographically sortable identifier (UUIDv7) used as the
// lookup key; it is embedded in the signed refresh token payload and is not
// secret. SecretHash is the SHA-256 of the raw refresh token string; the raw
// token is never stored, so a store read cannot yield a usable credential.
type Record struct {
	ID         string
	UserID     int64
	SecretHash [32]byte
	ExpiresAt  time.Time
	Revoked    bool
	DeviceInfo string
	OriginAddr string
	CreatedAt  time.Time
}

// Expired reports whether the record is past its expiry at the given instant.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
