// Package auth implements the delegated-authorization session lifecycle for the drive proxy.
//
// # Credential Store
//
// The [Store] interface holds the process's authorization grant. The shipped
// implementation, [MemoryStore], is a single slot: one grant for the whole
// process, shared by every request. This mirrors the service's documented
// single-tenant limitation. A keyed, per-session store can be substituted
// behind the same interface without touching any handler.
//
// SetToken replaces the slot wholesale (last write wins, no merge) and is
// atomic with respect to concurrent reads. The slot is never persisted:
// a process restart returns the service to the unauthenticated state.
//
// # Authorization Flow
//
// [Flow] drives the three-step OAuth2 authorization-code dance:
//
//  1. AuthCodeURL builds the provider consent URL, always requesting offline
//     access and forcing the consent prompt so a refresh token is reissued.
//  2. The callback delivers a one-time code.
//  3. Exchange trades the code for a grant and writes it into the Store.
//
// A failed exchange never mutates the Store. Revoke provides the explicit
// logout transition: best-effort remote revocation, then an unconditional
// local clear.
//
// Grant material is never logged and never leaves the process.
package auth
