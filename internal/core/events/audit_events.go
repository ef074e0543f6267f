package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered     = "user.registered"
	EventTypeRoleAssigned       = "rbac.role_assigned"
	EventTypeDepartmentDeleted  = "department.deleted"
	EventTypePrimaryDeptChanged = "membership.primary_changed"
)

type UserRegisteredEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func NewUserRegisteredEvent(userID int64, username string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
			},
		},
		UserID:   userID,
		Username: username,
	}
}

type RoleAssignedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

func NewRoleAssignedEvent(userID, roleID int64) *RoleAssignedEvent {
	return &RoleAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRoleAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"role_id": roleID,
			},
		},
		UserID: userID,
		RoleID: roleID,
	}
}

type DepartmentDeletedEvent struct {
	BaseEvent
	DepartmentID int64  `json:"department_id"`
	Code         string `json:"code"`
}

func NewDepartmentDeletedEvent(departmentID int64, code string) *DepartmentDeletedEvent {
	return &DepartmentDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDepartmentDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"department_id": departmentID,
				"code":          code,
			},
		},
		DepartmentID: departmentID,
		Code:         code,
	}
}

type PrimaryDepartmentChangedEvent struct {
	BaseEvent
	UserID       int64 `json:"user_id"`
	DepartmentID int64 `json:"department_id"`
}

func NewPrimaryDepartmentChangedEvent(userID, departmentID int64) *PrimaryDepartmentChangedEvent {
	return &PrimaryDepartmentChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePrimaryDeptChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":       userID,
				"department_id": departmentID,
			},
		},
		UserID:       userID,
		DepartmentID: departmentID,
	}
}
