// Package postgres provides the PostgreSQL implementation of the order
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/order"
	"github.com/ovenside/pizza-service/internal/pkg/postgres"
)

// Repository implements order.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL order repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetMenu returns all menu items ordered by ID.
func (r *Repository) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, image, price FROM menu_items ORDER BY id`,
	)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("get menu: %w", err))
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Image, &item.Price); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("iterate menu: %w", err))
	}

	return items, nil
}

// AddMenuItem inserts a menu item and returns it with its assigned ID.
func (r *Repository) AddMenuItem(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO menu_items (title, description, image, price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		item.Title, item.Description, item.Image, item.Price,
	).Scan(&item.ID)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("add menu item: %w", err))
	}

	return item, nil
}

// CreateOrder persists the order and its line items in one transaction.
// The store must belong to the named franchise and every referenced menu
// item must exist; descriptions and prices are copied from the menu at
// commit time so order history survives later menu edits.
func (r *Repository) CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var storeOK bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1 AND franchise_id = $2)`,
		o.StoreID, o.FranchiseID,
	).Scan(&storeOK)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("verify store: %w", err))
	}
	if !storeOK {
		return nil, order.ErrStoreMismatch
	}

	items := make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		priced := domain.OrderItem{MenuID: it.MenuID}
		err := tx.QueryRow(ctx,
			`SELECT description, price FROM menu_items WHERE id = $1`,
			it.MenuID,
		).Scan(&priced.Description, &priced.Price)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %d", order.ErrMenuItemNotFound, it.MenuID)
			}
			return nil, postgres.TranslateTransient(fmt.Errorf("resolve menu item: %w", err))
		}
		items = append(items, priced)
	}
	o.Items = items

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (reference, franchise_id, store_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		o.Reference, o.FranchiseID, o.StoreID, o.UserID, o.Date,
	).Scan(&o.ID)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("create order: %w", err))
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, menu_id, description, price)
			 VALUES ($1, $2, $3, $4)`,
			o.ID, it.MenuID, it.Description, it.Price,
		); err != nil {
			return nil, postgres.TranslateTransient(fmt.Errorf("create order item: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("commit tx: %w", err))
	}

	return o, nil
}

// GetUserOrders returns a page of the user's orders, newest first, plus the
// user's total order count.
func (r *Repository) GetUserOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, postgres.TranslateTransient(fmt.Errorf("count orders: %w", err))
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, reference, franchise_id, store_id, user_id, created_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, postgres.TranslateTransient(fmt.Errorf("list orders: %w", err))
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.FranchiseID, &o.StoreID, &o.UserID, &o.Date); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, postgres.TranslateTransient(fmt.Errorf("iterate orders: %w", err))
	}

	for i := range orders {
		items, err := r.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *Repository) getOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT menu_id, description, price FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("get order items: %w", err))
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.TranslateTransient(fmt.Errorf("iterate order items: %w", err))
	}

	return items, nil
}
