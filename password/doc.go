// Package password wraps bcrypt hashing and verification for account
// credentials. The cost factor is fixed at construction and never drops below
// 10; verification delegates to bcrypt's constant-time comparison so raw hash
// equality is never evaluated.
package password
