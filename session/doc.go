// Package session defines the durable record backing one outstanding refresh
// token and the Store contract that session backends must honor.
//
// Two interchangeable implementations ship with this module: [RedisStore]
// (key-value cache, TTL-based expiry) and [SQLStore] (GORM over Postgres,
// sweep-based expiry). The engine never assumes which backend is behind the
// interface beyond the atomic conditional-revoke contract documented on
// [Store.Revoke]: marking a record revoked must be linearizable per record ID
// across concurrent callers and across processes.
package session
