package franchise

import (
	"context"
	"fmt"

	"github.com/ovenside/pizza-service/internal/domain"
)

// Service implements franchise and store business logic.
type Service struct {
	repo Repository
}

// NewService creates a new franchise service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateFranchiseInput holds data for creating a franchise. Every admin
// email must belong to an already-registered user.
type CreateFranchiseInput struct {
	Name        string
	AdminEmails []string
}

// CreateFranchise creates a franchise with its admin links and grants each
// admin a franchisee role scoped to the new franchise id.
func (s *Service) CreateFranchise(ctx context.Context, input CreateFranchiseInput) (*domain.Franchise, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("franchise name is required")
	}
	return s.repo.CreateFranchise(ctx, input.Name, input.AdminEmails)
}

// DeleteFranchise cascades over stores, admin links and scoped roles.
func (s *Service) DeleteFranchise(ctx context.Context, id int64) error {
	return s.repo.DeleteFranchise(ctx, id)
}

// GetFranchise returns the franchise with resolved admins and stores.
func (s *Service) GetFranchise(ctx context.Context, id int64) (*domain.Franchise, error) {
	return s.repo.GetFranchise(ctx, id)
}

// ListFranchises returns all franchises with admins and stores.
func (s *Service) ListFranchises(ctx context.Context) ([]domain.Franchise, error) {
	return s.repo.ListFranchises(ctx)
}

// GetUserFranchises returns the franchises a user administers.
func (s *Service) GetUserFranchises(ctx context.Context, userID int64) ([]domain.Franchise, error) {
	return s.repo.GetUserFranchises(ctx, userID)
}

// CreateStore creates a store under the franchise.
func (s *Service) CreateStore(ctx context.Context, franchiseID int64, name string) (*domain.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	return s.repo.CreateStore(ctx, franchiseID, name)
}

// DeleteStore deletes a store scoped to its owning franchise.
func (s *Service) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	return s.repo.DeleteStore(ctx, franchiseID, storeID)
}
