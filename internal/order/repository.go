package order

import (
	"context"

	"github.com/ovenside/pizza-service/internal/domain"
)

// Repository defines the persistence contract for menus and orders.
type Repository interface {
	// GetMenu returns all menu items.
	GetMenu(ctx context.Context) ([]domain.MenuItem, error)

	// AddMenuItem inserts a menu item and returns it with its assigned ID.
	AddMenuItem(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error)

	// CreateOrder persists an order and its line items in a single
	// transaction. It verifies the store belongs to the franchise
	// (ErrStoreMismatch) and that every referenced menu item exists
	// (ErrMenuItemNotFound). Line item descriptions and prices are filled
	// from the current menu.
	CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error)

	// GetUserOrders returns a page of the user's orders, newest first,
	// along with the total order count for that user.
	GetUserOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, int, error)
}
