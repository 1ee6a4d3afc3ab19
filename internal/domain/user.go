package domain

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleDiner      Role = "diner"
	RoleAdmin      Role = "admin"
	RoleFranchisee Role = "franchisee"
)

// IsValid reports whether the role is one of the known variants.
func (r Role) IsValid() bool {
	switch r {
	case RoleDiner, RoleAdmin, RoleFranchisee:
		return true
	}
	return false
}

// Scoped reports whether the role is bound to a specific object id.
func (r Role) Scoped() bool {
	return r == RoleFranchisee
}

var ErrInvalidRole = errors.New("invalid role assignment")

// RoleAssignment binds a role to a user, optionally scoped to an object.
// Global roles (diner, admin) carry ObjectID 0; franchisee is always scoped
// to a franchise id.
type RoleAssignment struct {
	Role     Role  `json:"role"`
	ObjectID int64 `json:"objectId,omitempty"`
}

// NewRoleAssignment validates the (role, objectId) combination at
// construction so no unscoped franchisee or scoped global role can exist.
func NewRoleAssignment(role Role, objectID int64) (RoleAssignment, error) {
	if !role.IsValid() {
		return RoleAssignment{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRole, role)
	}
	if role.Scoped() && objectID == 0 {
		return RoleAssignment{}, fmt.Errorf("%w: %s requires an object id", ErrInvalidRole, role)
	}
	if !role.Scoped() && objectID != 0 {
		return RoleAssignment{}, fmt.Errorf("%w: %s is a global role", ErrInvalidRole, role)
	}
	return RoleAssignment{Role: role, ObjectID: objectID}, nil
}

type User struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"-"`
	Roles    []RoleAssignment `json:"roles"`
}

// Sanitized returns a copy with the password hash stripped. Every read path
// that leaves the repository layer must go through this.
func (u *User) Sanitized() *User {
	clone := *u
	clone.Password = ""
	return &clone
}

// HasRole reports whether the user holds the exact (role, objectID)
// assignment. Order of the role list is irrelevant; any match suffices.
func (u *User) HasRole(role Role, objectID int64) bool {
	for _, ra := range u.Roles {
		if ra.Role == role && ra.ObjectID == objectID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin, 0)
}
