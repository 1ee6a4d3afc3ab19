package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

// Service implements registration, login, logout and profile updates.
type Service struct {
	repo     Repository
	auth     Authenticator
	recorder *metrics.Recorder
}

// NewService creates a new identity service. The recorder may be nil when
// metrics emission is not wanted (unit tests).
func NewService(repo Repository, auth Authenticator, recorder *metrics.Recorder) *Service {
	return &Service{
		repo:     repo,
		auth:     auth,
		recorder: recorder,
	}
}

// RegisterInput holds data for creating a user. When Roles is empty the user
// is registered as a diner.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Roles    []domain.RoleAssignment
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput holds a partial profile update. Nil fields are untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Register creates a user with a hashed password and issues a session token.
// The returned user never carries the password hash.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	roles := input.Roles
	if len(roles) == 0 {
		roles = []domain.RoleAssignment{{Role: domain.RoleDiner}}
	}
	for _, ra := range roles {
		if _, err := domain.NewRoleAssignment(ra.Role, ra.ObjectID); err != nil {
			return nil, "", err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Roles:    roles,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.recordAuth(false)
		return nil, "", err
	}

	token, err := s.auth.IssueToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.recordAuth(true)
	return user.Sanitized(), token, nil
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		s.recordAuth(false)
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		s.recordAuth(false)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.IssueToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.recordAuth(true)
	return user.Sanitized(), token, nil
}

// Logout revokes the session token. Idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.auth.RevokeToken(ctx, token)
}

// ResolveToken validates a bearer token and returns the resolved identity.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	return s.auth.ValidateToken(ctx, token)
}

// UpdateUser applies a partial profile update, re-hashing the password when
// one is supplied. The unique-email invariant is enforced on update as well.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// GetUserByID returns the sanitized user.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *Service) recordAuth(success bool) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(success)
	}
}
