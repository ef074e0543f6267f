package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/org-management/internal"
	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
)

// RepositoryAPI is the storage surface for permissions. GetByID returns
// (nil, nil) for a missing row.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
	PairExists(ctx context.Context, resource, action string) (bool, error)
	Create(ctx context.Context, perm *rbacDatamodel.Permission) error
	Save(ctx context.Context, perm *rbacDatamodel.Permission) error
	GetAll(ctx context.Context) ([]*rbacDatamodel.Permission, error)
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

func (s *Service) Create(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.PairExists(ctx, dto.Resource, dto.Action)
	if err != nil {
		return nil, internal.NewInternalError("failed to check permission pair", err)
	}
	if taken {
		return nil, internal.ErrDuplicatePerm
	}

	perm := &rbacDatamodel.Permission{
		Name:        dto.Name,
		Resource:    dto.Resource,
		Action:      dto.Action,
		Description: dto.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, perm); err != nil {
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.logger.Info("permission created", "permission_id", perm.ID, "key", perm.Key())
	return FromDataModel(perm), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	perm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}

	if dto.Name != nil {
		perm.Name = *dto.Name
	}
	if dto.Description != nil {
		perm.Description = *dto.Description
	}
	if dto.IsActive != nil {
		perm.IsActive = *dto.IsActive
	}

	perm.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, perm); err != nil {
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	return FromDataModel(perm), nil
}

// Deactivate soft-deletes a permission. Grants stay in place; the resolver
// skips inactive permissions, so reactivation restores prior behavior.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	perm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load permission", err)
	}
	if perm == nil {
		return internal.ErrPermissionNotFound
	}

	if !perm.IsActive {
		return nil
	}

	perm.IsActive = false
	perm.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, perm); err != nil {
		return internal.NewInternalError("failed to deactivate permission", err)
	}

	s.logger.Info("permission deactivated", "permission_id", id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Permission, error) {
	perm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return FromDataModel(perm), nil
}

func (s *Service) List(ctx context.Context) ([]*Permission, error) {
	perms, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	result := make([]*Permission, 0, len(perms))
	for _, p := range perms {
		result = append(result, FromDataModel(p))
	}
	return result, nil
}
