// internal/domain/models/role.go
package models

import "strings"

// Role is the tag carried by every principal, both on its stored record and
// inside the signed credential.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleUser     Role = "user"
)

// AllRoles returns every role in a stable order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEmployee, RoleUser}
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleEmployee, RoleUser:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }
