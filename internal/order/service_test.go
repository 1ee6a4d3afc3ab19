package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	menu           []domain.MenuItem
	orders         []domain.Order
	createOrderErr error
}

func (m *mockRepository) GetMenu(_ context.Context) ([]domain.MenuItem, error) {
	return m.menu, nil
}

func (m *mockRepository) AddMenuItem(_ context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	item.ID = int64(len(m.menu) + 1)
	m.menu = append(m.menu, *item)
	return item, nil
}

func (m *mockRepository) CreateOrder(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if m.createOrderErr != nil {
		return nil, m.createOrderErr
	}
	items := make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		var found *domain.MenuItem
		for i := range m.menu {
			if m.menu[i].ID == it.MenuID {
				found = &m.menu[i]
				break
			}
		}
		if found == nil {
			return nil, ErrMenuItemNotFound
		}
		items = append(items, domain.OrderItem{
			MenuID:      it.MenuID,
			Description: found.Description,
			Price:       found.Price,
		})
	}
	o.ID = int64(len(m.orders) + 1)
	o.Items = items
	m.orders = append(m.orders, *o)
	return o, nil
}

func (m *mockRepository) GetUserOrders(_ context.Context, userID int64, limit, offset int) ([]domain.Order, int, error) {
	var mine []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func pizzaMenu() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: 1, Title: "Veggie", Description: "A garden of delight", Price: 0.0038},
		{ID: 2, Title: "Pepperoni", Description: "Spicy treat", Price: 0.0042},
	}
}

func TestCreateOrder_PricesComeFromMenu(t *testing.T) {
	// Arrange
	repo := &mockRepository{menu: pizzaMenu()}
	service := NewService(repo, nil)

	// Act
	created, err := service.CreateOrder(context.Background(), 5, CreateOrderInput{
		FranchiseID: 1,
		StoreID:     1,
		Items:       []CreateOrderItem{{MenuID: 1}, {MenuID: 2}},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "A garden of delight", created.Items[0].Description)
	assert.InDelta(t, 0.0038, created.Items[0].Price, 1e-9)
	assert.InDelta(t, 0.0080, created.Total(), 1e-9)
	assert.Equal(t, int64(5), created.UserID)
}

func TestCreateOrder_GeneratesUniqueReference(t *testing.T) {
	// Arrange
	repo := &mockRepository{menu: pizzaMenu()}
	service := NewService(repo, nil)

	input := CreateOrderInput{FranchiseID: 1, StoreID: 1, Items: []CreateOrderItem{{MenuID: 1}}}

	// Act
	first, err := service.CreateOrder(context.Background(), 5, input)
	require.NoError(t, err)
	second, err := service.CreateOrder(context.Background(), 5, input)
	require.NoError(t, err)

	// Assert
	assert.NotEqual(t, first.Reference, second.Reference)
	_, err = uuid.Parse(first.Reference)
	assert.NoError(t, err)
}

func TestCreateOrder_EmptyOrderRejected(t *testing.T) {
	// Arrange
	service := NewService(&mockRepository{menu: pizzaMenu()}, nil)

	// Act
	created, err := service.CreateOrder(context.Background(), 5, CreateOrderInput{
		FranchiseID: 1,
		StoreID:     1,
	})

	// Assert
	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrder_UnknownMenuItem(t *testing.T) {
	// Arrange
	service := NewService(&mockRepository{menu: pizzaMenu()}, nil)

	// Act
	created, err := service.CreateOrder(context.Background(), 5, CreateOrderInput{
		FranchiseID: 1,
		StoreID:     1,
		Items:       []CreateOrderItem{{MenuID: 999}},
	})

	// Assert
	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestCreateOrder_RepositoryError(t *testing.T) {
	// Arrange
	repo := &mockRepository{menu: pizzaMenu(), createOrderErr: errors.New("database error")}
	service := NewService(repo, nil)

	// Act
	created, err := service.CreateOrder(context.Background(), 5, CreateOrderInput{
		FranchiseID: 1,
		StoreID:     1,
		Items:       []CreateOrderItem{{MenuID: 1}},
	})

	// Assert
	assert.Nil(t, created)
	assert.Error(t, err)
}

func TestAddMenuItem_Validation(t *testing.T) {
	service := NewService(&mockRepository{}, nil)

	_, err := service.AddMenuItem(context.Background(), AddMenuItemInput{Title: "  "})
	assert.Error(t, err)

	_, err = service.AddMenuItem(context.Background(), AddMenuItemInput{Title: "Veggie", Price: -1})
	assert.Error(t, err)

	item, err := service.AddMenuItem(context.Background(), AddMenuItemInput{Title: "Veggie", Price: 0.0038})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
}

func TestGetUserOrders_Pagination(t *testing.T) {
	// Arrange
	repo := &mockRepository{menu: pizzaMenu()}
	service := NewService(repo, nil)

	for i := 0; i < 25; i++ {
		_, err := service.CreateOrder(context.Background(), 5, CreateOrderInput{
			FranchiseID: 1,
			StoreID:     1,
			Items:       []CreateOrderItem{{MenuID: 1}},
		})
		require.NoError(t, err)
	}

	// Act
	firstPage, err := service.GetUserOrders(context.Background(), 5, 1, 10)
	require.NoError(t, err)
	lastPage, err := service.GetUserOrders(context.Background(), 5, 3, 10)
	require.NoError(t, err)
	beyond, err := service.GetUserOrders(context.Background(), 5, 9, 10)
	require.NoError(t, err)

	// Assert
	assert.Len(t, firstPage.Orders, 10)
	assert.Equal(t, 25, firstPage.Total)
	assert.Len(t, lastPage.Orders, 5)
	assert.Empty(t, beyond.Orders)
	assert.Equal(t, 25, beyond.Total)
}

func TestGetUserOrders_ClampsPageInputs(t *testing.T) {
	// Arrange
	service := NewService(&mockRepository{}, nil)

	// Act
	page, err := service.GetUserOrders(context.Background(), 5, -3, -1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.NotNil(t, page.Orders)
}

func TestOrderTotal(t *testing.T) {
	o := &domain.Order{Items: []domain.OrderItem{
		{Price: 0.0038},
		{Price: 0.0042},
	}}
	assert.InDelta(t, 0.0080, o.Total(), 1e-9)

	empty := &domain.Order{}
	assert.Zero(t, empty.Total())
}
