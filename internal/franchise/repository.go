package franchise

import (
	"context"

	"github.com/ovenside/pizza-service/internal/domain"
)

// Repository defines the interface for franchise and store data operations.
// Multi-row mutations run as single transactions inside the implementation:
// concurrent readers never observe a partially-applied franchise graph.
type Repository interface {
	// CreateFranchise resolves admin emails to existing users, inserts the
	// franchise, its admin links and the scoped franchisee role
	// assignments atomically. ErrUnknownAdmin aborts the whole operation.
	CreateFranchise(ctx context.Context, name string, adminEmails []string) (*domain.Franchise, error)

	// DeleteFranchise removes stores, admin links, scoped franchisee
	// roles and the franchise row in one transaction. A missing id is
	// ErrFranchiseNotFound, never a silent no-op.
	DeleteFranchise(ctx context.Context, id int64) error

	GetFranchise(ctx context.Context, id int64) (*domain.Franchise, error)
	ListFranchises(ctx context.Context) ([]domain.Franchise, error)

	// GetUserFranchises returns franchises the user administers, via admin
	// link or scoped franchisee role. Empty slice when none.
	GetUserFranchises(ctx context.Context, userID int64) ([]domain.Franchise, error)

	CreateStore(ctx context.Context, franchiseID int64, name string) (*domain.Store, error)

	// DeleteStore fails with ErrStoreNotFound when the store does not
	// belong to the given franchise.
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error

	// ResolveID performs an allowlisted natural-key lookup (email -> user
	// id, name -> franchise id).
	ResolveID(ctx context.Context, table, column string, value any) (int64, error)
}
