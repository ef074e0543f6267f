package postgres

import (
	"context"
	"errors"

	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
	"gorm.io/gorm"
)

// Repository implements both department.RepositoryAPI and
// department.MembershipRepositoryAPI using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*deptDatamodel.Department, error) {
	var dept deptDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]*deptDatamodel.Department, error) {
	var depts []*deptDatamodel.Department
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&deptDatamodel.Department{}).Count(&count).Error
	return count, err
}

func (r *Repository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&deptDatamodel.Department{}).Where("code = ?", code)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, dept *deptDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *Repository) Save(ctx context.Context, dept *deptDatamodel.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&deptDatamodel.Department{})
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) CountChildren(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&deptDatamodel.Department{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountMembers(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&deptDatamodel.UserDepartment{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("users").Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) GetMembership(ctx context.Context, id int64) (*deptDatamodel.UserDepartment, error) {
	var membership deptDatamodel.UserDepartment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *Repository) FindMembership(ctx context.Context, userID, departmentID int64) (*deptDatamodel.UserDepartment, error) {
	var membership deptDatamodel.UserDepartment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *Repository) FindPrimary(ctx context.Context, userID int64) (*deptDatamodel.UserDepartment, error) {
	var membership deptDatamodel.UserDepartment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", userID, true).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*deptDatamodel.UserDepartment, error) {
	var memberships []*deptDatamodel.UserDepartment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *Repository) ListByDepartment(ctx context.Context, departmentID int64) ([]*deptDatamodel.UserDepartment, error) {
	var memberships []*deptDatamodel.UserDepartment
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("id ASC").
		Find(&memberships).Error
	return memberships, err
}

// CreateMembership inserts a membership. When clearPrimary is set, the
// user's other primary memberships are demoted in the same transaction so
// the single-primary invariant holds even under concurrent writes.
func (r *Repository) CreateMembership(ctx context.Context, m *deptDatamodel.UserDepartment, clearPrimary bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearPrimary {
			if err := clearOtherPrimaries(tx, m.UserID, 0); err != nil {
				return err
			}
		}
		return tx.Create(m).Error
	})
}

// SaveMembership persists membership changes. When clearPrimary is set, the
// user's other primary memberships are demoted in the same transaction.
func (r *Repository) SaveMembership(ctx context.Context, m *deptDatamodel.UserDepartment, clearPrimary bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearPrimary {
			if err := clearOtherPrimaries(tx, m.UserID, m.ID); err != nil {
				return err
			}
		}
		return tx.Save(m).Error
	})
}

func (r *Repository) DeleteMembership(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&deptDatamodel.UserDepartment{})
	return result.RowsAffected > 0, result.Error
}

func clearOtherPrimaries(tx *gorm.DB, userID, excludeID int64) error {
	query := tx.Model(&deptDatamodel.UserDepartment{}).
		Where("user_id = ? AND is_primary = ?", userID, true)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	return query.Update("is_primary", false).Error
}
