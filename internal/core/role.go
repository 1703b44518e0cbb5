package core

// Role is the side a client plays within a session.
type Role int

const (
	// RoleA is assigned to the first client taken from the queue.
	RoleA Role = iota
	// RoleB is assigned to the second client taken from the queue.
	RoleB
)

// Roles maps the two roles to the tokens announced on the wire.
type Roles struct {
	First  string
	Second string
}

// DefaultRoles are the chess colors: the first waiter plays white.
var DefaultRoles = Roles{First: "WHITE", Second: "BLACK"}

// Token returns the wire token for r.
func (r Roles) Token(role Role) string {
	if role == RoleA {
		return r.First
	}
	return r.Second
}

// withDefaults fills empty or clashing tokens from DefaultRoles.
func (r Roles) withDefaults() Roles {
	if r.First == "" {
		r.First = DefaultRoles.First
	}
	if r.Second == "" {
		r.Second = DefaultRoles.Second
	}
	if r.First == r.Second {
		return DefaultRoles
	}
	return r
}
