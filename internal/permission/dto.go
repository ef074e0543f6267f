package permission

import "strings"

type CreatePermissionDTO struct {
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// UpdatePermissionDTO carries a partial update: nil means "leave unchanged".
// The (resource, action) pair is immutable once created; only metadata and
// the active flag can change.
type UpdatePermissionDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreatePermissionDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if strings.TrimSpace(d.Resource) == "" {
		return ValidationError{Msg: "resource is required"}
	}
	if strings.TrimSpace(d.Action) == "" {
		return ValidationError{Msg: "action is required"}
	}
	return nil
}

func (d UpdatePermissionDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	return nil
}
