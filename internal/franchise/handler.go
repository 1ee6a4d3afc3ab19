package franchise

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ovenside/pizza-service/internal/authz"
	"github.com/ovenside/pizza-service/internal/domain"
	"github.com/ovenside/pizza-service/internal/pkg/httputil"
)

// Handler handles HTTP requests for the franchise module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new franchise handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers authenticated franchise routes. Admin-only
// operations are gated per-handler or by the middleware of the caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/franchises", func(r chi.Router) {
		r.Get("/", h.ListFranchises)
		r.Get("/{franchiseID}", h.GetFranchise)
		r.Post("/{franchiseID}/stores", h.CreateStore)
		r.Delete("/{franchiseID}/stores/{storeID}", h.DeleteStore)

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireAdmin)
			r.Post("/", h.CreateFranchise)
			r.Delete("/{franchiseID}", h.DeleteFranchise)
		})
	})
	r.Get("/users/{userID}/franchises", h.GetUserFranchises)
}

// CreateFranchiseRequest represents franchise creation request body.
type CreateFranchiseRequest struct {
	Name   string `json:"name" validate:"required"`
	Admins []struct {
		Email string `json:"email" validate:"required,email"`
	} `json:"admins" validate:"dive"`
}

// CreateFranchise handles POST /franchises.
func (h *Handler) CreateFranchise(w http.ResponseWriter, r *http.Request) {
	var req CreateFranchiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	emails := make([]string, 0, len(req.Admins))
	for _, a := range req.Admins {
		emails = append(emails, a.Email)
	}

	created, err := h.service.CreateFranchise(r.Context(), CreateFranchiseInput{
		Name:        req.Name,
		AdminEmails: emails,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, created)
}

// DeleteFranchise handles DELETE /franchises/{franchiseID}.
func (h *Handler) DeleteFranchise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "franchiseID")
	if !ok {
		return
	}

	if err := h.service.DeleteFranchise(r.Context(), id); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]string{"message": "franchise deleted"})
}

// GetFranchise handles GET /franchises/{franchiseID}.
func (h *Handler) GetFranchise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "franchiseID")
	if !ok {
		return
	}

	f, err := h.service.GetFranchise(r.Context(), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, f)
}

// ListFranchises handles GET /franchises.
func (h *Handler) ListFranchises(w http.ResponseWriter, r *http.Request) {
	franchises, err := h.service.ListFranchises(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, franchises)
}

// GetUserFranchises handles GET /users/{userID}/franchises. Users see their
// own franchises; admins see anyone's.
func (h *Handler) GetUserFranchises(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := authz.RequireSelfOrAdmin(httputil.Identity(r.Context()), userID); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	franchises, err := h.service.GetUserFranchises(r.Context(), userID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, franchises)
}

// CreateStoreRequest represents store creation request body.
type CreateStoreRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateStore handles POST /franchises/{franchiseID}/stores. Allowed for
// admins and franchisees of that franchise.
func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, ok := pathID(w, r, "franchiseID")
	if !ok {
		return
	}

	if err := authz.Require(httputil.Identity(r.Context()), domain.RoleFranchisee, franchiseID); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	store, err := h.service.CreateStore(r.Context(), franchiseID, req.Name)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, store)
}

// DeleteStore handles DELETE /franchises/{franchiseID}/stores/{storeID}.
func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, ok := pathID(w, r, "franchiseID")
	if !ok {
		return
	}
	storeID, ok := pathID(w, r, "storeID")
	if !ok {
		return
	}

	if err := authz.Require(httputil.Identity(r.Context()), domain.RoleFranchisee, franchiseID); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	if err := h.service.DeleteStore(r.Context(), franchiseID, storeID); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]string{"message": "store deleted"})
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, append([]httputil.ErrorMapping{
		{Error: ErrFranchiseNotFound, Status: http.StatusNotFound},
		{Error: ErrStoreNotFound, Status: http.StatusNotFound},
		{Error: ErrFranchiseExists, Status: http.StatusConflict},
		{Error: ErrUnknownAdmin, Status: http.StatusBadRequest},
	}, httputil.CommonMappings()...))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
