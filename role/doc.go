// Package role defines the closed set of user roles recognised by sessiongate and a
// compact bitmask type for role requirements.
//
// # Closed enumeration
//
// [Role] values are produced only by [Parse] or the exported constants. The zero value
// [None] means "no role" and is never returned by a successful parse, so an unknown
// role claim can not reach authorization decisions.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. It knows nothing about
// routes, tokens, or storage.
//
// # What this package must NOT do
//
//   - Import sessiongate, token, policy, or store.
//   - Accept role names outside the enumeration, including case variants.
package role
