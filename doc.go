// Package sessiongate is the client-side session and role-based access core of the
// course platform. It knows who the current visitor is, keeps that identity consistent
// between memory and persisted storage across restarts, and feeds the route guards in
// [github.com/coursedesk/sessiongate/guard].
//
// A [Manager] is built once through [Builder.Build] and is safe to call from multiple
// goroutines. Its lifecycle is Uninitialized, then Loading while the persisted snapshot is
// read back, then either Authenticated with exactly one role or Unauthenticated.
//
// # Architecture boundaries
//
// sessiongate owns the in-memory session and the decision of what to persist. Storage
// backends live in store, token decoding in token, the static role table in policy and the
// HTTP rendering adapters in middleware. Credential verification belongs to the
// [Authenticator] collaborator.
//
// # What this package must NOT do
//
//   - Verify token signatures. Tokens are trusted as issued by the collaborator.
//   - Persist a token without its matching role and profile.
//   - Hold a role outside the closed [role.Role] enumeration.
//   - Return rehydration faults to callers. A bad snapshot collapses to logged out.
package sessiongate
