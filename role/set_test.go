package role

import "testing"

func TestSetMembership(t *testing.T) {
	s := NewSet(Admin, Customer, None, Role(99))

	if !s.Has(Admin) || !s.Has(Customer) {
		t.Fatalf("expected Admin and Customer in %v", s)
	}
	if s.Has(Manager) || s.Has(None) {
		t.Fatalf("unexpected member in %v", s)
	}
	if got := s.String(); got != "{Admin,Customer}" {
		t.Fatalf("unexpected string %q", got)
	}
	if len(s.Roles()) != 2 {
		t.Fatalf("expected 2 roles, got %v", s.Roles())
	}
}

func TestSetImmutableWith(t *testing.T) {
	base := NewSet(Staff)
	grown := base.With(Manager)

	if base.Has(Manager) {
		t.Fatal("With must not mutate the receiver")
	}
	if !grown.Has(Manager) || !grown.Has(Staff) {
		t.Fatalf("unexpected grown set %v", grown)
	}
}

func TestSetEmpty(t *testing.T) {
	var s Set
	if !s.Empty() {
		t.Fatal("zero set must be empty")
	}
	if s.String() != "{}" {
		t.Fatalf("unexpected string %q", s.String())
	}
	if NewSet(None).Has(None) || !NewSet(None).Empty() {
		t.Fatal("None must never be a member")
	}
}
