package rbac

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/org-management/internal"
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Resolve computes the effective permission set for a user: the union of
// "resource:action" keys reachable through active roles and their active
// permission grants. A user with no assignments yields an empty set.
func (s *Service) Resolve(ctx context.Context, userID int64) (map[string]struct{}, error) {
	roles, err := s.store.RolesForUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role assignments", err)
	}

	permissions := make(map[string]struct{})

	for _, role := range roles {
		if !role.IsActive {
			continue
		}

		grants, err := s.store.PermissionsForRole(ctx, role.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load permission grants", err)
		}

		for _, perm := range grants {
			if !perm.IsActive {
				continue
			}
			permissions[perm.Key()] = struct{}{}
		}
	}

	return permissions, nil
}

// Check reports whether the user's effective permission set contains
// resource:action. It resolves freshly on every call.
func (s *Service) Check(ctx context.Context, userID int64, resource, action string) (bool, error) {
	permissions, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}

	_, ok := permissions[PermissionKey(resource, action)]
	return ok, nil
}

// RolesOf returns the names of the user's active roles.
func (s *Service) RolesOf(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.store.RolesForUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role assignments", err)
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		if role.IsActive {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

// RolePermissions returns the active permission keys granted to one role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) (map[string]struct{}, error) {
	exists, err := s.store.RoleExists(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check role", err)
	}
	if !exists {
		return nil, internal.ErrRoleNotFound
	}

	grants, err := s.store.PermissionsForRole(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission grants", err)
	}

	permissions := make(map[string]struct{})
	for _, perm := range grants {
		if perm.IsActive {
			permissions[perm.Key()] = struct{}{}
		}
	}
	return permissions, nil
}

// AssignRole links a role to a user. Assigning an already-assigned role is
// an idempotent no-op.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	userExists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to check user", err)
	}
	if !userExists {
		return internal.ErrUserNotFound
	}

	roleExists, err := s.store.RoleExists(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("failed to check role", err)
	}
	if !roleExists {
		return internal.ErrRoleNotFound
	}

	assigned, err := s.store.HasAssignment(ctx, userID, roleID)
	if err != nil {
		return internal.NewInternalError("failed to check assignment", err)
	}
	if assigned {
		return nil
	}

	if err := s.store.CreateAssignment(ctx, userID, roleID); err != nil {
		return internal.NewInternalError("failed to create assignment", err)
	}

	s.logger.Info("role assigned", "user_id", userID, "role_id", roleID)
	return nil
}

// RevokeRole removes a user-role link. Removing a missing link is a no-op.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if err := s.store.DeleteAssignment(ctx, userID, roleID); err != nil {
		return internal.NewInternalError("failed to delete assignment", err)
	}
	return nil
}

// GrantPermission links a permission to a role, idempotently.
func (s *Service) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	roleExists, err := s.store.RoleExists(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("failed to check role", err)
	}
	if !roleExists {
		return internal.ErrRoleNotFound
	}

	permExists, err := s.store.PermissionExists(ctx, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to check permission", err)
	}
	if !permExists {
		return internal.ErrPermissionNotFound
	}

	granted, err := s.store.HasGrant(ctx, roleID, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to check grant", err)
	}
	if granted {
		return nil
	}

	if err := s.store.CreateGrant(ctx, roleID, permissionID); err != nil {
		return internal.NewInternalError("failed to create grant", err)
	}

	s.logger.Info("permission granted", "role_id", roleID, "permission_id", permissionID)
	return nil
}

// RevokePermission removes a role-permission link. Removing a missing link
// is a no-op.
func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	if err := s.store.DeleteGrant(ctx, roleID, permissionID); err != nil {
		return internal.NewInternalError("failed to delete grant", err)
	}
	return nil
}
