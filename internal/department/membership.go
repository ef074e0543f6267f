package department

import (
	"time"

	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
)

// Membership ties a user to a department. At most one membership per user
// carries the primary flag.
type Membership struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	DepartmentID int64     `json:"department_id"`
	Position     *string   `json:"position,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func MembershipFromDataModel(m *deptDatamodel.UserDepartment) *Membership {
	if m == nil {
		return nil
	}
	return &Membership{
		ID:           m.ID,
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		Position:     m.Position,
		IsPrimary:    m.IsPrimary,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// BatchAssignResult summarizes a bulk assignment: users newly linked and
// users skipped because they already belonged to the department.
type BatchAssignResult struct {
	Assigned []int64 `json:"assigned"`
	Skipped  []int64 `json:"skipped"`
}
