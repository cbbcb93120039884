// Package authtoken implements the token lifecycle for the subscription
// management backend: issuance of paired access/refresh JWTs, dual-store
// persistence of refresh tokens (durable ledger + fast cache), rotation on
// refresh, and blacklist-based revocation on logout.
//
// The SessionManager orchestrates three injected collaborators: a TokenCodec
// (signing and verification), a SessionStore (key-value cache with per-key
// TTL, normally Redis), and a TokenLedger (durable refresh-token records,
// normally Postgres). The manager holds no mutable state of its own and is
// safe for concurrent use.
package authtoken
