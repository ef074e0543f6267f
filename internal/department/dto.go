package department

// CreateDepartmentDTO is the payload for creating a department.
type CreateDepartmentDTO struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	SortOrder   int     `json:"sort_order"`
	Description *string `json:"description,omitempty"`
	ManagerID   *int64  `json:"manager_id,omitempty"`
}

// UpdateDepartmentDTO carries a partial update: nil means "leave unchanged".
type UpdateDepartmentDTO struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	Description *string `json:"description,omitempty"`
	ManagerID   *int64  `json:"manager_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateDepartmentDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.Code == "" {
		return ValidationError{Msg: "code is required"}
	}
	if d.SortOrder < 0 {
		return ValidationError{Msg: "sort_order must be >= 0"}
	}
	return nil
}

func (d UpdateDepartmentDTO) Validate() error {
	if d.Name != nil && *d.Name == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	if d.Code != nil && *d.Code == "" {
		return ValidationError{Msg: "code cannot be empty"}
	}
	if d.SortOrder != nil && *d.SortOrder < 0 {
		return ValidationError{Msg: "sort_order must be >= 0"}
	}
	return nil
}

// AssignMemberDTO adds a user to a department.
type AssignMemberDTO struct {
	UserID       int64   `json:"user_id"`
	DepartmentID int64   `json:"department_id"`
	Position     *string `json:"position,omitempty"`
	IsPrimary    bool    `json:"is_primary"`
}

// UpdateMembershipDTO carries a partial membership update.
type UpdateMembershipDTO struct {
	Position  *string `json:"position,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
}

// BatchAssignDTO adds several users to one department in a single call.
type BatchAssignDTO struct {
	DepartmentID int64   `json:"department_id"`
	UserIDs      []int64 `json:"user_ids"`
	Position     *string `json:"position,omitempty"`
}

func (d AssignMemberDTO) Validate() error {
	if d.UserID <= 0 {
		return ValidationError{Msg: "user_id is required"}
	}
	if d.DepartmentID <= 0 {
		return ValidationError{Msg: "department_id is required"}
	}
	return nil
}

func (d BatchAssignDTO) Validate() error {
	if d.DepartmentID <= 0 {
		return ValidationError{Msg: "department_id is required"}
	}
	if len(d.UserIDs) == 0 {
		return ValidationError{Msg: "user_ids cannot be empty"}
	}
	return nil
}
