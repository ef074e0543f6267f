package postgres

import (
	"context"

	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.Role{}).Where("id = ?", roleID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) PermissionExists(ctx context.Context, permissionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.Permission{}).Where("id = ?", permissionID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) RolesForUser(ctx context.Context, userID int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	return roles, err
}

func (r *Repository) PermissionsForRole(ctx context.Context, roleID int64) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&permissions).Error
	return permissions, err
}

func (r *Repository) HasAssignment(ctx context.Context, userID, roleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateAssignment(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).Create(&rbacDatamodel.UserRole{
		UserID: userID,
		RoleID: roleID,
	}).Error
}

func (r *Repository) DeleteAssignment(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&rbacDatamodel.UserRole{}).Error
}

func (r *Repository) HasGrant(ctx context.Context, roleID, permissionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateGrant(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).Create(&rbacDatamodel.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
	}).Error
}

func (r *Repository) DeleteGrant(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&rbacDatamodel.RolePermission{}).Error
}
