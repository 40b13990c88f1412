package role

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing is returned by Parse for an empty role name.
	ErrMissing = errors.New("role missing")
	// ErrUnknown is returned by Parse for a name outside the enumeration.
	ErrUnknown = errors.New("unknown role")
)

// Role is one of the fixed user categories. The zero value is None.
type Role uint8

const (
	// None is the absence of a role (logged out, or not yet resolved).
	None Role = iota
	Admin
	Manager
	Staff
	Consultant
	Customer

	roleCount
)

var names = [roleCount]string{
	None:       "",
	Admin:      "Admin",
	Manager:    "Manager",
	Staff:      "Staff",
	Consultant: "Consultant",
	Customer:   "Customer",
}

// Parse maps a role claim to a Role. Matching is exact and case-sensitive.
func Parse(name string) (Role, error) {
	if name == "" {
		return None, ErrMissing
	}
	for r := Admin; r < roleCount; r++ {
		if names[r] == name {
			return r, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// All returns every valid role in declaration order.
func All() []Role {
	out := make([]Role, 0, roleCount-1)
	for r := Admin; r < roleCount; r++ {
		out = append(out, r)
	}
	return out
}

// Valid reports whether r is a member of the enumeration. None is not valid.
func (r Role) Valid() bool {
	return r > None && r < roleCount
}

func (r Role) String() string {
	if r >= roleCount {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return names[r]
}

// MarshalText encodes r as its claim name. None encodes as an empty string.
func (r Role) MarshalText() ([]byte, error) {
	if r != None && !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, uint8(r))
	}
	return []byte(names[r]), nil
}

// UnmarshalText decodes a claim name. An empty input decodes to None.
func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = None
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
