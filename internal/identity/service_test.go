package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	nextID        int64
	createUserErr error
	updateUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:  make(map[string]*domain.User),
		nextID: 1,
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	if _, ok := m.users[user.Email]; ok {
		return ErrEmailExists
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = user
	return nil
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	if m.updateUserErr != nil {
		return m.updateUserErr
	}
	for email, u := range m.users {
		if u.ID == user.ID {
			if email != user.Email {
				if _, taken := m.users[user.Email]; taken {
					return ErrEmailExists
				}
				delete(m.users, email)
			}
			clone := *user
			m.users[user.Email] = &clone
			return nil
		}
	}
	return ErrUserNotFound
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	issueErr error
	revoked  map[string]bool
}

func newMockAuthenticator() *mockAuthenticator {
	return &mockAuthenticator{revoked: make(map[string]bool)}
}

func (m *mockAuthenticator) IssueToken(_ context.Context, _ *domain.User) (string, error) {
	if m.issueErr != nil {
		return "", m.issueErr
	}
	return "test-token", nil
}

func (m *mockAuthenticator) ValidateToken(_ context.Context, token string) (*domain.User, error) {
	if m.revoked[token] {
		return nil, ErrInvalidToken
	}
	return &domain.User{ID: 1}, nil
}

func (m *mockAuthenticator) RevokeToken(_ context.Context, token string) error {
	m.revoked[token] = true
	return nil
}

func TestRegister_DefaultsToDinerRole(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository(), newMockAuthenticator(), nil)

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "test-token", token)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, domain.RoleDiner, user.Roles[0].Role)
	assert.Equal(t, int64(0), user.Roles[0].ObjectID)
}

func TestRegister_NeverExposesPasswordHash(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	// Act
	user, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	// The stored user keeps a bcrypt hash, never the plaintext
	stored := repo.users["kai@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
}

func TestRegister_EmailAlreadyExists(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.users["existing@example.com"] = &domain.User{ID: 1, Email: "existing@example.com"}
	service := NewService(repo, newMockAuthenticator(), nil)

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Name:     "Dup",
		Email:    "existing@example.com",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_RejectsInvalidRole(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository(), newMockAuthenticator(), nil)

	// Act
	user, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
		Roles:    []domain.RoleAssignment{{Role: "superuser"}},
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLogin_Succeeds(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// Act
	user, token, err := service.Login(context.Background(), LoginInput{
		Email:    "kai@example.com",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)
	assert.Equal(t, "kai@example.com", user.Email)
	assert.Empty(t, user.Password)
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// Act
	_, _, errUnknown := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	_, _, errWrongPass := service.Login(context.Background(), LoginInput{
		Email:    "kai@example.com",
		Password: "wrong",
	})

	// Assert
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestLogout_RevokesToken(t *testing.T) {
	// Arrange
	auth := newMockAuthenticator()
	service := NewService(newMockRepository(), auth, nil)

	// Act
	err := service.Logout(context.Background(), "some-token")

	// Assert
	require.NoError(t, err)
	assert.True(t, auth.revoked["some-token"])

	_, err = service.ResolveToken(context.Background(), "some-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateUser_PatchesOnlyProvidedFields(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	created, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	newName := "Kai C."

	// Act
	updated, err := service.UpdateUser(context.Background(), created.ID, UpdateUserInput{
		Name: &newName,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Kai C.", updated.Name)
	assert.Equal(t, "kai@example.com", updated.Email)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	created, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	newPassword := "differentpass"

	// Act
	updated, err := service.UpdateUser(context.Background(), created.ID, UpdateUserInput{
		Password: &newPassword,
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, updated.Password)

	stored := repo.users["kai@example.com"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("differentpass")))
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Name: "First", Email: "first@example.com", Password: "password123",
	})
	require.NoError(t, err)
	second, _, err := service.Register(context.Background(), RegisterInput{
		Name: "Second", Email: "second@example.com", Password: "password123",
	})
	require.NoError(t, err)

	takenEmail := "first@example.com"

	// Act
	updated, err := service.UpdateUser(context.Background(), second.ID, UpdateUserInput{
		Email: &takenEmail,
	})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdateUser_NotFound(t *testing.T) {
	// Arrange
	service := NewService(newMockRepository(), newMockAuthenticator(), nil)

	name := "Ghost"

	// Act
	updated, err := service.UpdateUser(context.Background(), 999, UpdateUserInput{Name: &name})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByID_Sanitized(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockAuthenticator(), nil)

	created, _, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// Act
	user, err := service.GetUserByID(context.Background(), created.ID)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Equal(t, "kai@example.com", user.Email)
}

func TestRegister_IssueTokenFails(t *testing.T) {
	// Arrange
	auth := newMockAuthenticator()
	auth.issueErr = errors.New("signing error")
	service := NewService(newMockRepository(), auth, nil)

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kai Chen",
		Email:    "kai@example.com",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Error(t, err)
}
