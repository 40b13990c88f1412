package policy

import "github.com/coursedesk/sessiongate/role"

// Subtree is a guarded group of screens sharing one requirement.
type Subtree uint8

const (
	NoSubtree Subtree = iota
	AdminArea
	ManagerArea
	StaffArea
	ConsultantArea
	CustomerArea
	subtreeCount
)

var subtreeNames = [subtreeCount]string{"", "admin", "manager", "staff", "consultant", "customer"}

// Subtrees lists every guarded subtree.
func Subtrees() []Subtree {
	return []Subtree{AdminArea, ManagerArea, StaffArea, ConsultantArea, CustomerArea}
}

func (s Subtree) String() string {
	if s >= subtreeCount {
		return "unknown"
	}
	return subtreeNames[s]
}

// Prefix returns the URL prefix of the subtree, or "" for NoSubtree.
func (s Subtree) Prefix() string {
	if s == NoSubtree || s >= subtreeCount {
		return ""
	}
	return "/" + subtreeNames[s]
}

// Primary returns the subtree owned by r.
func Primary(r role.Role) Subtree {
	switch r {
	case role.Admin:
		return AdminArea
	case role.Manager:
		return ManagerArea
	case role.Staff:
		return StaffArea
	case role.Consultant:
		return ConsultantArea
	case role.Customer:
		return CustomerArea
	case role.None:
		return NoSubtree
	default:
		return NoSubtree
	}
}

// Allowed returns every subtree r may enter: its own plus the shared customer screens.
func Allowed(r role.Role) []Subtree {
	switch r {
	case role.Admin, role.Manager, role.Staff, role.Consultant:
		return []Subtree{Primary(r), CustomerArea}
	case role.Customer:
		return []Subtree{CustomerArea}
	default:
		return nil
	}
}

// Permits reports whether r may enter s.
func Permits(r role.Role, s Subtree) bool {
	return Requirement(s).Has(r)
}

var requirements = func() [subtreeCount]role.Set {
	var out [subtreeCount]role.Set
	for _, r := range role.All() {
		for _, s := range Allowed(r) {
			out[s] = out[s].With(r)
		}
	}
	return out
}()

// Requirement returns the roles admitted to s. NoSubtree admits nobody.
func Requirement(s Subtree) role.Set {
	if s >= subtreeCount {
		return 0
	}
	return requirements[s]
}

// Home returns the landing path for r after login.
func Home(r role.Role) string {
	if p := Primary(r).Prefix(); p != "" {
		return p
	}
	return LoginPath
}
