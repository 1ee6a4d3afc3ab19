// Package jwt implements the session token authority on HS256 JWTs.
package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/identity"
)

// RevocationStore persists revocation records keyed by token digest.
// Membership lookup must be O(1); appends must be idempotent.
type RevocationStore interface {
	AddRevocation(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	PurgeExpiredRevocations(ctx context.Context) (int64, error)
}

// Config contains token authority configuration.
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
}

// Claims carried by a session token: the subject's identity and roles.
type Claims struct {
	Name  string                  `json:"name,omitempty"`
	Email string                  `json:"email,omitempty"`
	Roles []domain.RoleAssignment `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates signed session tokens.
type Authenticator struct {
	secret   []byte
	duration time.Duration
	store    RevocationStore
}

// NewAuthenticator creates a new token authority.
func NewAuthenticator(cfg Config, store RevocationStore) *Authenticator {
	return &Authenticator{
		secret:   []byte(cfg.SecretKey),
		duration: cfg.TokenDuration,
		store:    store,
	}
}

// IssueToken produces a compact HS256 JWT (three dot-separated base64url
// segments) binding the user's id, roles and issue time.
func (a *Authenticator) IssueToken(_ context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique id per issuance so two tokens for the same user are
			// never byte-identical and revocation stays per session.
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry, checks the revocation set,
// and returns the resolved identity. Any failure maps to ErrInvalidToken so
// callers cannot distinguish a forged token from a revoked one.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, identity.ErrInvalidToken
	}

	revoked, err := a.store.IsRevoked(ctx, hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, identity.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}

	return &domain.User{
		ID:    userID,
		Name:  claims.Name,
		Email: claims.Email,
		Roles: claims.Roles,
	}, nil
}

// RevokeToken appends the token to the revocation set. The record carries
// the token's own expiry so garbage collection never drops a live record.
// Revoking an unknown or already revoked token is not an error.
func (a *Authenticator) RevokeToken(ctx context.Context, token string) error {
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}); err != nil {
		return identity.ErrInvalidToken
	}

	userID, _ := strconv.ParseInt(claims.Subject, 10, 64)
	expiresAt := time.Now().Add(a.duration)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return a.store.AddRevocation(ctx, hashToken(token), userID, expiresAt)
}

// PurgeExpired removes revocation records whose tokens have expired anyway.
func (a *Authenticator) PurgeExpired(ctx context.Context) (int64, error) {
	return a.store.PurgeExpiredRevocations(ctx)
}

// hashToken returns the SHA-256 digest of the compact token. The digest is
// the revocation key, so raw tokens are never persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
