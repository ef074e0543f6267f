package postgres

import (
	"database/sql"
	"errors"

	"github.com/frahmantamala/org-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(username string) (int64, string, bool, error) {
	var userID int64
	var passwordHash string
	var isActive bool
	query := `SELECT id, password_hash, is_active FROM users WHERE username = ?`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash, &isActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", false, auth.ErrInvalidCredentials
		}
		return 0, "", false, err
	}
	return userID, passwordHash, isActive, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, username, email, is_active FROM users WHERE id = ?`
	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	// Effective permission set: active roles, active permissions only.
	permQuery := `SELECT DISTINCT p.resource || ':' || p.action
	             FROM permissions p
	             JOIN role_permissions rp ON rp.permission_id = p.id
	             JOIN roles r ON r.id = rp.role_id
	             JOIN user_roles ur ON ur.role_id = r.id
	             WHERE ur.user_id = ? AND r.is_active = true AND p.is_active = true`

	rows, err := r.db.Raw(permQuery, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, err
		}
		permissions = append(permissions, perm)
	}

	user.Permissions = permissions
	return &user, nil
}
