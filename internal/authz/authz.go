// Package authz evaluates role requirements against a resolved identity.
// It is a pure predicate over already-validated token claims: no I/O, no
// side effects, and no re-parsing of token strings.
package authz

import (
	"errors"

	"github.com/ovenside/pizza-service/internal/domain"
)

var ErrForbidden = errors.New("insufficient permissions")

// Require succeeds when the identity holds the requested role. Global roles
// match with scopeID 0; scoped roles (franchisee) match only the exact
// scope. The global admin role supersedes every check.
func Require(user *domain.User, role domain.Role, scopeID int64) error {
	if user == nil {
		return ErrForbidden
	}
	if user.IsAdmin() {
		return nil
	}
	if user.HasRole(role, scopeID) {
		return nil
	}
	return ErrForbidden
}

// RequireSelfOrAdmin succeeds when the identity is the user in question or
// holds the global admin role.
func RequireSelfOrAdmin(user *domain.User, userID int64) error {
	if user == nil {
		return ErrForbidden
	}
	if user.ID == userID || user.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
