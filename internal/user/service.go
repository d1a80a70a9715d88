package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
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

func (s *Service) GetCurrentUser(ctx context.Context, caller auth.Caller) (*User, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	row, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return FromDataModel(row), nil
}

// ListEmployees is the admin directory, ordered by display name.
func (s *Service) ListEmployees(ctx context.Context, caller auth.Caller) ([]Employee, error) {
	if err := auth.Authorize(auth.ActionListUsers, caller, auth.Resource{}); err != nil {
		return nil, err
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	return employees, nil
}
