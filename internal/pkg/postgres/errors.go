package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for natural-key resolution and transient failures.
// Repositories translate these into their own domain errors so raw
// data-layer error text never reaches a caller.
var (
	// ErrNotFound indicates zero rows matched a lookup.
	ErrNotFound = errors.New("no matching row")

	// ErrAmbiguous indicates multiple rows matched a lookup on a column
	// that is expected to be unique.
	ErrAmbiguous = errors.New("ambiguous match on unique key")

	// ErrUnavailable indicates a transient backing-store failure (timeout,
	// dropped connection). Safe for the caller to retry.
	ErrUnavailable = errors.New("database unavailable")
)

// PostgreSQL error codes relevant to domain error translation.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// TranslateTransient maps connection-level failures to ErrUnavailable and
// returns other errors unchanged. A cancelled caller context is not
// retryable and passes through as-is.
func TranslateTransient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}
	if pgconn.Timeout(err) {
		return errors.Join(ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
