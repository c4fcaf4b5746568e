// internal/app/system/authz/roles.go
package authz

import "strings"

// Role is the closed set of roles a stored user record can hold.
type Role string

const (
	User      Role = "user"
	Donor     Role = "donor"
	Volunteer Role = "volunteer"
	Admin     Role = "admin"
)

// ParseRole maps a stored role string onto a Role.
// Missing or unrecognized values read as User, which grants nothing.
func ParseRole(s string) Role {
	if r, ok := LookupRole(s); ok {
		return r
	}
	return User
}

// LookupRole is the strict form of ParseRole, used when a role arrives as
// input (an admin changing someone's role) and must be rejected if unknown.
func LookupRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case User:
		return User, true
	case Donor:
		return Donor, true
	case Volunteer:
		return Volunteer, true
	case Admin:
		return Admin, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// RoleSet is an allow-list of roles.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet from the given roles.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Strings returns the set's members, for logging.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range []Role{User, Donor, Volunteer, Admin} {
		if s.Has(r) {
			out = append(out, string(r))
		}
	}
	return out
}
