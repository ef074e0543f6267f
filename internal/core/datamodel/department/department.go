package department

import "time"

// Department rows form a forest through ParentID. Level is derived: roots
// are level 1, children are parent.level + 1.
type Department struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	ParentID    *int64    `gorm:"column:parent_id"`
	Level       int       `gorm:"column:level;not null;default:1"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	Description *string   `gorm:"column:description"`
	ManagerID   *int64    `gorm:"column:manager_id"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type UserDepartment struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_departments_user_department"`
	DepartmentID int64     `gorm:"column:department_id;not null;uniqueIndex:idx_user_departments_user_department"`
	Position     *string   `gorm:"column:position"`
	IsPrimary    bool      `gorm:"column:is_primary;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (UserDepartment) TableName() string {
	return "user_departments"
}
