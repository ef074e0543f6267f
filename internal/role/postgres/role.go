package postgres

import (
	"context"
	"errors"

	rbacDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

// Repository implements role.RepositoryAPI using GORM
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&rbacDatamodel.Role{}).Where("name = ?", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *Repository) Save(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *Repository) GetAll(ctx context.Context) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, err
}
