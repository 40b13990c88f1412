// Package guard decides whether the current visitor may see a screen.
//
// [Check] is the pure decision: the same required set and role always give the same
// answer. [Controller] adds the effects around it. It defers while the session is still
// loading, redirects to the unauthorized screen on denial and reports every decision back
// to the session. [Gate] holds back guest screens until the session has resolved.
//
// # What this package must NOT do
//
//   - Mutate the session.
//   - Render guarded content on anything other than Allow.
package guard
