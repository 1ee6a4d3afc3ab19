// Package postgres provides the PostgreSQL implementation of the franchise
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/franchise"
	"github.com/ovenside/pizza-service/internal/pkg/postgres"
)

// Repository implements franchise.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL franchise repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateFranchise runs the whole creation as one transaction: admin email
// resolution, franchise row, admin links, scoped franchisee roles. Any
// unresolved email aborts with ErrUnknownAdmin and nothing is committed.
func (r *Repository) CreateFranchise(ctx context.Context, name string, adminEmails []string) (*domain.Franchise, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	admins := make([]domain.FranchiseAdmin, 0, len(adminEmails))
	for _, email := range adminEmails {
		var admin domain.FranchiseAdmin
		err := tx.QueryRow(ctx,
			`SELECT id, name, email FROM users WHERE email = $1`,
			email,
		).Scan(&admin.ID, &admin.Name, &admin.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", franchise.ErrUnknownAdmin, email)
			}
			return nil, postgres.TranslateTransient(fmt.Errorf("resolve admin: %w", err))
		}
		admins = append(admins, admin)
	}

	f := &domain.Franchise{Name: name, Admins: admins, Stores: []domain.Store{}}
	err = tx.QueryRow(ctx,
		`INSERT INTO franchises (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&f.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, franchise.ErrFranchiseExists
		}
		return nil, postgres.TranslateTransient(fmt.Errorf("create franchise: %w", err))
	}

	for _, admin := range admins {
		if _, err := tx.Exec(ctx,
			`INSERT INTO franchise_admins (franchise_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			f.ID, admin.ID,
		); err != nil {
			return nil, postgres.TranslateTransient(fmt.Errorf("link admin: %w", err))
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3) ON CONFLICT (user_id, role, object_id) DO NOTHING`,
			admin.ID, domain.RoleFranchisee, f.ID,
		); err != nil {
			return nil, postgres.TranslateTransient(fmt.Errorf("grant franchisee role: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("commit create franchise: %w", err))
	}
	return f, nil
}

// DeleteFranchise deletes children first, then the franchise row, then the
// scoped franchisee role assignments, all in one transaction.
func (r *Repository) DeleteFranchise(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return postgres.TranslateTransient(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM franchises WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return postgres.TranslateTransient(fmt.Errorf("check franchise: %w", err))
	}
	if !exists {
		return franchise.ErrFranchiseNotFound
	}

	steps := []string{
		`DELETE FROM stores WHERE franchise_id = $1`,
		`DELETE FROM franchise_admins WHERE franchise_id = $1`,
		`DELETE FROM franchises WHERE id = $1`,
		`DELETE FROM user_roles WHERE role = 'franchisee' AND object_id = $1`,
	}
	for _, query := range steps {
		if _, err := tx.Exec(ctx, query, id); err != nil {
			return postgres.TranslateTransient(fmt.Errorf("delete franchise: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return postgres.TranslateTransient(fmt.Errorf("commit delete franchise: %w", err))
	}
	return nil
}

// GetFranchise retrieves a franchise with its admins and stores.
func (r *Repository) GetFranchise(ctx context.Context, id int64) (*domain.Franchise, error) {
	var f domain.Franchise
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM franchises WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, franchise.ErrFranchiseNotFound
		}
		return nil, postgres.TranslateTransient(fmt.Errorf("get franchise: %w", err))
	}

	if err := r.loadChildren(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFranchises retrieves all franchises with admins and stores.
func (r *Repository) ListFranchises(ctx context.Context) ([]domain.Franchise, error) {
	return r.listFranchises(ctx, `SELECT id, name FROM franchises ORDER BY name`)
}

// GetUserFranchises retrieves franchises the user administers, whether via
// an admin link or a scoped franchisee role assignment.
func (r *Repository) GetUserFranchises(ctx context.Context, userID int64) ([]domain.Franchise, error) {
	query := `
		SELECT id, name FROM franchises
		WHERE id IN (
			SELECT franchise_id FROM franchise_admins WHERE user_id = $1
			UNION
			SELECT object_id FROM user_roles WHERE user_id = $1 AND role = 'franchisee'
		)
		ORDER BY name
	`
	return r.listFranchises(ctx, query, userID)
}

func (r *Repository) listFranchises(ctx context.Context, query string, args ...any) ([]domain.Franchise, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("list franchises: %w", err))
	}
	defer rows.Close()

	franchises := make([]domain.Franchise, 0)
	for rows.Next() {
		var f domain.Franchise
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("scan franchise: %w", err)
		}
		franchises = append(franchises, f)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.TranslateTransient(err)
	}

	for i := range franchises {
		if err := r.loadChildren(ctx, &franchises[i]); err != nil {
			return nil, err
		}
	}
	return franchises, nil
}

func (r *Repository) loadChildren(ctx context.Context, f *domain.Franchise) error {
	admins, err := r.getAdmins(ctx, f.ID)
	if err != nil {
		return err
	}
	f.Admins = admins

	stores, err := r.getStores(ctx, f.ID)
	if err != nil {
		return err
	}
	f.Stores = stores
	return nil
}

func (r *Repository) getAdmins(ctx context.Context, franchiseID int64) ([]domain.FranchiseAdmin, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM franchise_admins fa
		JOIN users u ON u.id = fa.user_id
		WHERE fa.franchise_id = $1
		ORDER BY u.id
	`
	rows, err := r.db.Query(ctx, query, franchiseID)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("get franchise admins: %w", err))
	}
	defer rows.Close()

	admins := make([]domain.FranchiseAdmin, 0)
	for rows.Next() {
		var admin domain.FranchiseAdmin
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

func (r *Repository) getStores(ctx context.Context, franchiseID int64) ([]domain.Store, error) {
	query := `SELECT id, franchise_id, name FROM stores WHERE franchise_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, franchiseID)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("get stores: %w", err))
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(&store.ID, &store.FranchiseID, &store.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

// CreateStore inserts a store under the franchise.
func (r *Repository) CreateStore(ctx context.Context, franchiseID int64, name string) (*domain.Store, error) {
	store := &domain.Store{FranchiseID: franchiseID, Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO stores (franchise_id, name) VALUES ($1, $2) RETURNING id`,
		franchiseID, name,
	).Scan(&store.ID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, franchise.ErrFranchiseNotFound
		}
		return nil, postgres.TranslateTransient(fmt.Errorf("create store: %w", err))
	}
	return store, nil
}

// DeleteStore removes a store only when it belongs to the given franchise,
// preventing cross-tenant deletion.
func (r *Repository) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM stores WHERE id = $1 AND franchise_id = $2`,
		storeID, franchiseID,
	)
	if err != nil {
		return postgres.TranslateTransient(fmt.Errorf("delete store: %w", err))
	}
	if result.RowsAffected() == 0 {
		return franchise.ErrStoreNotFound
	}
	return nil
}

// ResolveID resolves a natural key to a generated id through the shared
// allowlisted lookup.
func (r *Repository) ResolveID(ctx context.Context, table, column string, value any) (int64, error) {
	return postgres.ResolveID(ctx, r.db, table, column, value)
}
