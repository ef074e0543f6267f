package role

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/org-management/internal"
	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
	"github.com/frahmantamala/org-management/internal/rbac"
)

// RepositoryAPI is the storage surface for roles. GetByID returns
// (nil, nil) for a missing row.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, role *rbacDatamodel.Role) error
	Save(ctx context.Context, role *rbacDatamodel.Role) error
	GetAll(ctx context.Context) ([]*rbacDatamodel.Role, error)
}

type Service struct {
	repo   RepositoryAPI
	rbac   rbac.ServiceAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, rbacSvc rbac.ServiceAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		rbac:   rbacSvc,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameExists(ctx, dto.Name, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if taken {
		return nil, internal.ErrDuplicateRoleName
	}

	role := &rbacDatamodel.Role{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", role.ID, "name", role.Name)
	return FromDataModel(role), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}

	if dto.Name != nil {
		taken, err := s.repo.NameExists(ctx, *dto.Name, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role name", err)
		}
		if taken {
			return nil, internal.ErrDuplicateRoleName
		}
		role.Name = *dto.Name
	}

	if dto.Description != nil {
		role.Description = *dto.Description
	}

	if dto.IsActive != nil {
		role.IsActive = *dto.IsActive
	}

	role.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, role); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}

	return FromDataModel(role), nil
}

// Deactivate soft-deletes a role. Assignments and grants stay in place;
// the resolver simply skips inactive roles, so reactivation restores the
// previous permissions.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}

	if !role.IsActive {
		return nil
	}

	role.IsActive = false
	role.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, role); err != nil {
		return internal.NewInternalError("failed to deactivate role", err)
	}

	s.logger.Info("role deactivated", "role_id", id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(role), nil
}

func (s *Service) List(ctx context.Context) ([]*Role, error) {
	roles, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	result := make([]*Role, 0, len(roles))
	for _, r := range roles {
		result = append(result, FromDataModel(r))
	}
	return result, nil
}

func (s *Service) Permissions(ctx context.Context, id int64) ([]string, error) {
	perms, err := s.rbac.RolePermissions(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(perms))
	for k := range perms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Service) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.rbac.GrantPermission(ctx, roleID, permissionID)
}

func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	return s.rbac.RevokePermission(ctx, roleID, permissionID)
}
