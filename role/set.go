package role

import "strings"

// Set is an immutable bitmask of roles. The zero value is the empty set.
type Set uint8

// NewSet returns the set containing roles. Invalid roles are ignored.
func NewSet(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

// With returns s plus r.
func (s Set) With(r Role) Set {
	if !r.Valid() {
		return s
	}
	return s | 1<<r
}

// Has reports whether r is in s. None is never a member.
func (s Set) Has(r Role) bool {
	if !r.Valid() {
		return false
	}
	return s&(1<<r) != 0
}

func (s Set) Empty() bool {
	return s == 0
}

// Roles lists the members of s in declaration order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, roleCount-1)
	for r := Admin; r < roleCount; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Set) String() string {
	roles := s.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
