// Package internal holds helpers that are private to sessiongate.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - cli: the sessiongate command tree
//   - devauth: development authentication collaborator
//
// # What this package must NOT do
//
//   - Export types that appear in the public sessiongate API.
package internal
