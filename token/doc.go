// Package token reads claims out of signed session tokens and, for development and
// tests, issues them.
//
// # Trust model
//
// The client never verifies signatures: trust in a token is established by the server
// that issued it, and [Decode] only reads the payload. Callers must treat the decoded
// claims as untrusted input and validate their business meaning themselves.
//
// # Architecture boundaries
//
// This package owns the JWT wire format. It does NOT interpret the role claim against
// the role enumeration, persist tokens, or make authorization decisions.
//
// # What this package must NOT do
//
//   - Import sessiongate, role, policy, or store.
//   - Panic on arbitrary input strings.
package token
