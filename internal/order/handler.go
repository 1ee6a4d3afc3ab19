package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ovenside/pizza-service/internal/pkg/httputil"
)

// Handler handles HTTP requests for menus and orders.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that need no authentication. The
// menu is readable by anyone.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/menu", h.GetMenu)
}

// RegisterRoutes registers authenticated order routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.GetUserOrders)
		r.Post("/", h.CreateOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireAdmin)
		r.Put("/menu", h.AddMenuItem)
	})
}

// GetMenu handles GET /menu.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.GetMenu(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, menu)
}

// AddMenuItemRequest represents a menu addition request body.
type AddMenuItemRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// AddMenuItem handles PUT /menu.
func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req AddMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	item, err := h.service.AddMenuItem(r.Context(), AddMenuItemInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, item)
}

// CreateOrderRequest represents an order placement request body.
type CreateOrderRequest struct {
	FranchiseID int64 `json:"franchiseId" validate:"required"`
	StoreID     int64 `json:"storeId" validate:"required"`
	Items       []struct {
		MenuID int64 `json:"menuId" validate:"required"`
	} `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := httputil.Identity(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	items := make([]CreateOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, CreateOrderItem{MenuID: it.MenuID})
	}

	created, err := h.service.CreateOrder(r.Context(), user.ID, CreateOrderInput{
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       items,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, created)
}

// GetUserOrders handles GET /orders. Supports page and pageSize query
// parameters.
func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	user := httputil.Identity(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.service.GetUserOrders(r.Context(), user.ID, page, pageSize)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, append([]httputil.ErrorMapping{
		{Error: ErrStoreMismatch, Status: http.StatusBadRequest},
		{Error: ErrMenuItemNotFound, Status: http.StatusBadRequest},
		{Error: ErrEmptyOrder, Status: http.StatusBadRequest},
	}, httputil.CommonMappings()...))
}
