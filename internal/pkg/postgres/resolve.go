package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier covers the query methods shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolvableKeys lists the (table, column) pairs ResolveID may query.
// Identifiers cannot be bound as statement parameters, so anything outside
// this allowlist is rejected before the query is built.
var resolvableKeys = map[string]map[string]bool{
	"users":      {"email": true},
	"franchises": {"name": true},
	"stores":     {"name": true},
	"menu_items": {"title": true},
}

// ResolveID looks up the generated id for a natural key, e.g. a user's email
// or a franchise's name. The key value is always passed as a bound parameter.
// Returns ErrNotFound when no row matches and ErrAmbiguous when more than one
// does, since every resolvable key is expected unique.
func ResolveID(ctx context.Context, q Querier, table, column string, value any) (int64, error) {
	if !resolvableKeys[table][column] {
		return 0, fmt.Errorf("column %s.%s is not resolvable", table, column)
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 LIMIT 2`, table, column)
	rows, err := q.Query(ctx, query, value)
	if err != nil {
		return 0, TranslateTransient(fmt.Errorf("resolve %s.%s: %w", table, column, err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, TranslateTransient(err)
	}

	switch len(ids) {
	case 0:
		return 0, ErrNotFound
	case 1:
		return ids[0], nil
	default:
		return 0, fmt.Errorf("%w: %s.%s", ErrAmbiguous, table, column)
	}
}
