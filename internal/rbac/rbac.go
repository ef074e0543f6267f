package rbac

import (
	"context"

	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
)

// PermissionKey is the canonical "resource:action" string for a grant.
func PermissionKey(resource, action string) string {
	return resource + ":" + action
}

// Store is the storage surface the resolver traverses. Role and grant rows
// are returned regardless of active flags; filtering is the resolver's job
// so that deactivation stays a non-destructive override.
type Store interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	PermissionExists(ctx context.Context, permissionID int64) (bool, error)

	RolesForUser(ctx context.Context, userID int64) ([]*rbacDatamodel.Role, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]*rbacDatamodel.Permission, error)

	HasAssignment(ctx context.Context, userID, roleID int64) (bool, error)
	CreateAssignment(ctx context.Context, userID, roleID int64) error
	DeleteAssignment(ctx context.Context, userID, roleID int64) error

	HasGrant(ctx context.Context, roleID, permissionID int64) (bool, error)
	CreateGrant(ctx context.Context, roleID, permissionID int64) error
	DeleteGrant(ctx context.Context, roleID, permissionID int64) error
}

type ServiceAPI interface {
	Resolve(ctx context.Context, userID int64) (map[string]struct{}, error)
	Check(ctx context.Context, userID int64, resource, action string) (bool, error)
	RolesOf(ctx context.Context, userID int64) ([]string, error)
	RolePermissions(ctx context.Context, roleID int64) (map[string]struct{}, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error
	GrantPermission(ctx context.Context, roleID, permissionID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID int64) error
}
