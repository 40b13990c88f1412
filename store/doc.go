// Package store persists the session snapshot under three keys: token, role and profile.
//
// # Architecture boundaries
//
// A [Store] only moves strings. It never decodes tokens, never parses roles and never
// interprets the profile document; that belongs to the session manager. Every backend
// writes and clears the three keys as one unit, so a reader never observes a token
// without its role or profile.
//
// Backends:
//   - [Memory]: in-process map, for tests and embedded use.
//   - [File]: a single JSON document guarded by a lock file.
//   - [Redis]: three keys under a prefix, written inside MULTI/EXEC.
//
// # What this package must NOT do
//
//   - Validate role names or token structure.
//   - Write partial snapshots.
//   - Retry failed writes.
package store
