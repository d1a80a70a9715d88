package category

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	categoryDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/category"
)

// RepositoryAPI returns ErrCategoryNotFound from the single-row lookups.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id string) (*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories(ctx context.Context, caller auth.Caller) ([]*Category, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, internal.NewInternalError("failed to list categories", err)
	}

	categories := make([]*Category, len(rows))
	for i, row := range rows {
		categories[i] = FromDataModel(row)
	}
	return categories, nil
}

// Exists reports whether id names a category. Invoice item validation relies on it.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrCategoryNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.Warn("error checking category", "category_id", id, "error", err)
		return false, err
	}
	return true, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Caller, dto CreateCategoryDTO) (*Category, error) {
	if err := auth.Authorize(auth.ActionManageCategories, caller, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, ErrDuplicateCategoryName
	case !errors.Is(err, ErrCategoryNotFound):
		return nil, internal.NewInternalError("failed to check category name", err)
	}

	c := NewCategory(name)
	if err := s.repo.Create(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", name)
		return nil, internal.NewInternalError("failed to create category", err)
	}

	s.logger.Info("category created", "category_id", c.ID, "name", c.Name, "by", caller.UserID)
	return c, nil
}
