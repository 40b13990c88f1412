// Package policy holds the static access table: which role may enter which screen
// subtree, where each role lands after login, and the top-level route table.
//
// The table is fixed at compile time. There is no registration or mutation API.
package policy
