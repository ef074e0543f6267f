package postgres

import (
	"context"
	"errors"

	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

// Repository implements permission.RepositoryAPI using GORM
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	var perm rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *Repository) PairExists(ctx context.Context, resource, action string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.Permission{}).
		Where("resource = ? AND action = ?", resource, action).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, perm *rbacDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *Repository) Save(ctx context.Context, perm *rbacDatamodel.Permission) error {
	return r.db.WithContext(ctx).Save(perm).Error
}

func (r *Repository) GetAll(ctx context.Context) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Order("resource ASC, action ASC").Find(&perms).Error
	return perms, err
}
