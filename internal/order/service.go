package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/pkg/metrics"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service implements menu and order business logic.
type Service struct {
	repo     Repository
	recorder *metrics.Recorder
}

// NewService creates a new order service. recorder may be nil.
func NewService(repo Repository, recorder *metrics.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// GetMenu returns the full menu.
func (s *Service) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.GetMenu(ctx)
}

// AddMenuItemInput carries the fields of a new menu item.
type AddMenuItemInput struct {
	Title       string
	Description string
	Image       string
	Price       float64
}

// AddMenuItem adds an item to the menu.
func (s *Service) AddMenuItem(ctx context.Context, input AddMenuItemInput) (*domain.MenuItem, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("menu item title is required")
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("menu item price must not be negative")
	}

	return s.repo.AddMenuItem(ctx, &domain.MenuItem{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		Price:       input.Price,
	})
}

// CreateOrderInput carries an incoming order.
type CreateOrderInput struct {
	FranchiseID int64
	StoreID     int64
	Items       []CreateOrderItem
}

// CreateOrderItem references a menu item by ID.
type CreateOrderItem struct {
	MenuID int64
}

// CreateOrder places an order for the given user. The order reference is
// generated server side and line item prices are taken from the current
// menu, never from the client.
func (s *Service) CreateOrder(ctx context.Context, userID int64, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, domain.OrderItem{MenuID: it.MenuID})
	}

	o := &domain.Order{
		Reference:   uuid.NewString(),
		FranchiseID: input.FranchiseID,
		StoreID:     input.StoreID,
		UserID:      userID,
		Date:        time.Now().UTC(),
		Items:       items,
	}

	created, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		if s.recorder != nil {
			s.recorder.RecordPurchaseFailure()
		}
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordOrderPlaced(len(created.Items), created.Total())
	}
	return created, nil
}

// OrderPage is a page of a user's order history.
type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Page   int            `json:"page"`
	Total  int            `json:"total"`
}

// GetUserOrders returns a page of the user's orders, newest first. Pages
// are 1-based; out-of-range pages return an empty list.
func (s *Service) GetUserOrders(ctx context.Context, userID int64, page, pageSize int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	orders, total, err := s.repo.GetUserOrders(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return &OrderPage{Orders: orders, Page: page, Total: total}, nil
}
