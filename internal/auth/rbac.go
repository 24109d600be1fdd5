package auth

import (
	"fmt"
	"strings"
)

// Role is the staff role carried in a JWT. Admins and editors may change
// events; viewers only read them.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleEditor):
		return RoleEditor
	default:
		return RoleViewer
	}
}

// ParseRole is the strict form of NormalizeRole used for user input.
func ParseRole(role string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(role))); r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q (must be admin, editor or viewer)", role)
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}

// CanWrite reports whether role may modify events.
func CanWrite(role string) bool {
	return HasRole(role, RoleAdmin, RoleEditor)
}
