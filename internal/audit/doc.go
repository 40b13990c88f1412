// Package audit delivers session audit events to a sink without blocking the caller
// longer than the configured buffer allows.
//
// # Components
//
//   - [Sink]: consumer of events (channel, JSON lines, function, no-op).
//   - [Dispatcher]: buffered relay that either drops or blocks when full.
//   - [Event]: one record describing a session transition or an access decision.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. Which events are emitted, and when, is
// decided by the session manager and the route guard.
//
// # What this package must NOT do
//
//   - Filter events based on their content.
//   - Import sessiongate or any sibling package.
//   - Perform I/O beyond what a caller-supplied Sink does.
package audit
