package department

import (
	"context"
	"time"

	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
)

// ServiceAPI defines the department hierarchy operations exposed over HTTP.
type ServiceAPI interface {
	Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error)
	Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	Tree(ctx context.Context) ([]*TreeNode, error)
}

// MembershipServiceAPI defines the user-department membership operations.
type MembershipServiceAPI interface {
	Assign(ctx context.Context, dto AssignMemberDTO) (*Membership, error)
	Update(ctx context.Context, id int64, dto UpdateMembershipDTO) (*Membership, error)
	Remove(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*Membership, error)
	ListByUser(ctx context.Context, userID int64) ([]*Membership, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*Membership, error)
	PrimaryOf(ctx context.Context, userID int64) (*Membership, error)
	BatchAssign(ctx context.Context, dto BatchAssignDTO) (*BatchAssignResult, error)
}

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	Level       int       `json:"level"`
	SortOrder   int       `json:"sort_order"`
	Description *string   `json:"description,omitempty"`
	ManagerID   *int64    `json:"manager_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TreeNode is a department annotated with its live member count and the
// children attached beneath it in the assembled forest.
type TreeNode struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Level       int         `json:"level"`
	SortOrder   int         `json:"sort_order"`
	Description *string     `json:"description,omitempty"`
	ManagerID   *int64      `json:"manager_id,omitempty"`
	IsActive    bool        `json:"is_active"`
	MemberCount int64       `json:"member_count"`
	Children    []*TreeNode `json:"children"`
}

func FromDataModel(d *deptDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		ParentID:    d.ParentID,
		Level:       d.Level,
		SortOrder:   d.SortOrder,
		Description: d.Description,
		ManagerID:   d.ManagerID,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToDataModel(d *Department) *deptDatamodel.Department {
	return &deptDatamodel.Department{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		ParentID:    d.ParentID,
		Level:       d.Level,
		SortOrder:   d.SortOrder,
		Description: d.Description,
		ManagerID:   d.ManagerID,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
