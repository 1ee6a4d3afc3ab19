// Package postgres provides the PostgreSQL implementation of the identity
// repository and the token revocation store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/identity"
	"github.com/ovenside/pizza-service/internal/pkg/postgres"
)

// Repository implements identity.Repository and jwt.RevocationStore.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL identity repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts the user row and its role assignments in one
// transaction and sets the generated id.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return postgres.TranslateTransient(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query, user.Name, user.Email, user.Password).Scan(&user.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return identity.ErrEmailExists
		}
		return postgres.TranslateTransient(fmt.Errorf("create user: %w", err))
	}

	for _, ra := range user.Roles {
		if err := insertRole(ctx, tx, user.ID, ra); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return postgres.TranslateTransient(fmt.Errorf("commit create user: %w", err))
	}
	return nil
}

// GetUserByEmail retrieves a user with password hash and roles.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash FROM users WHERE email = $1`, email)
}

// GetUserByID retrieves a user with password hash and roles.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash FROM users WHERE id = $1`, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, postgres.TranslateTransient(fmt.Errorf("get user: %w", err))
	}

	roles, err := r.getUserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

func (r *Repository) getUserRoles(ctx context.Context, userID int64) ([]domain.RoleAssignment, error) {
	query := `SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("get user roles: %w", err))
	}
	defer rows.Close()

	roles := make([]domain.RoleAssignment, 0)
	for rows.Next() {
		var ra domain.RoleAssignment
		if err := rows.Scan(&ra.Role, &ra.ObjectID); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, ra)
	}
	return roles, rows.Err()
}

// UpdateUser updates name, email and password hash. Roles are untouched.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.Password)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return identity.ErrEmailExists
		}
		return postgres.TranslateTransient(fmt.Errorf("update user: %w", err))
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func insertRole(ctx context.Context, tx pgx.Tx, userID int64, ra domain.RoleAssignment) error {
	query := `
		INSERT INTO user_roles (user_id, role, object_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role, object_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, userID, ra.Role, ra.ObjectID); err != nil {
		return postgres.TranslateTransient(fmt.Errorf("insert role %s: %w", ra.Role, err))
	}
	return nil
}

// AddRevocation appends a revocation record. Idempotent under concurrent
// writers: a duplicate digest is a no-op, never a lost update.
func (r *Repository) AddRevocation(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO token_revocation (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, tokenHash, userID, expiresAt); err != nil {
		return postgres.TranslateTransient(fmt.Errorf("add revocation: %w", err))
	}
	return nil
}

// IsRevoked reports revocation-set membership via a primary-key lookup.
func (r *Repository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM token_revocation WHERE token_hash = $1)`
	var revoked bool
	if err := r.db.QueryRow(ctx, query, tokenHash).Scan(&revoked); err != nil {
		return false, postgres.TranslateTransient(fmt.Errorf("check revocation: %w", err))
	}
	return revoked, nil
}

// PurgeExpiredRevocations drops records for tokens past their natural expiry.
func (r *Repository) PurgeExpiredRevocations(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM token_revocation WHERE expires_at < NOW()`)
	if err != nil {
		return 0, postgres.TranslateTransient(fmt.Errorf("purge revocations: %w", err))
	}
	return result.RowsAffected(), nil
}
