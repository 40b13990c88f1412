// Package middleware renders the route guards over echo.
//
// Components:
//   - [Gate]: serves a loading page on guest routes until the session resolves.
//   - [RequireSubtree]: admits a guarded subtree only on an Allow decision and turns
//     every other decision into a loading page or a redirect.
//   - [Mount]: wires the whole top-level route table onto an echo instance.
//   - [RegisterSessionAPI]: JSON endpoints driving the session manager.
//
// # Architecture boundaries
//
// Decisions come from guard. This package only maps them to HTTP responses.
//
// # What this package must NOT do
//
//   - Decide access on its own.
//   - Call the next handler on Defer or Deny.
package middleware
