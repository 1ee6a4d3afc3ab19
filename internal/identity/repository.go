package identity

import (
	"context"

	"github.com/ovenside/pizza-service/internal/domain"
)

// Repository defines the interface for user credential storage.
type Repository interface {
	// CreateUser inserts the user and its role assignments, setting the
	// generated id. Returns ErrEmailExists on duplicate email.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail returns the user including the password hash.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID returns the user including role assignments.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// UpdateUser updates name, email and password hash. Role assignments
	// are left untouched. Returns ErrUserNotFound if the id is absent and
	// ErrEmailExists if the new email is taken by another user.
	UpdateUser(ctx context.Context, user *domain.User) error
}

// Authenticator issues, validates and revokes session tokens.
type Authenticator interface {
	// IssueToken produces a signed compact token bound to the user.
	IssueToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken verifies signature, expiry and revocation, returning
	// the resolved identity (id + roles). Fails with ErrInvalidToken.
	ValidateToken(ctx context.Context, token string) (*domain.User, error)

	// RevokeToken invalidates the token before its natural expiry.
	// Revoking an already revoked token is not an error.
	RevokeToken(ctx context.Context, token string) error
}
