package user

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/org-management/internal"
	"github.com/frahmantamala/org-management/internal/auth"
	userDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/user"
	"github.com/frahmantamala/org-management/internal/core/events"
	"github.com/frahmantamala/org-management/internal/rbac"
)

// RepositoryAPI is the storage surface for accounts. GetByID returns
// (nil, nil) for a missing row.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Save(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*userDatamodel.User, int64, error)
}

type Service struct {
	repo       RepositoryAPI
	rbac       rbac.ServiceAPI
	events     *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, rbacSvc rbac.ServiceAPI, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		rbac:       rbacSvc,
		events:     bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	usernameTaken, err := s.repo.UsernameExists(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if usernameTaken {
		return nil, internal.ErrDuplicateUsername
	}

	emailTaken, err := s.repo.EmailExists(ctx, dto.Email, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if emailTaken {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	account := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewUserRegisteredEvent(account.ID, account.Username))
	}

	s.logger.Info("user registered", "user_id", account.ID, "username", account.Username)
	return FromDataModel(account), nil
}

// GetByID loads an account together with its active role names and
// effective permissions.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if account == nil {
		return nil, internal.ErrUserNotFound
	}

	result := FromDataModel(account)

	roles, err := s.rbac.RolesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Roles = roles

	perms, err := s.rbac.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Permissions = sortedKeys(perms)

	return result, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) (*UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	accounts, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, FromDataModel(a))
	}

	return &UserPage{
		Users:  users,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if account == nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Email != nil {
		emailTaken, err := s.repo.EmailExists(ctx, *dto.Email, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		if emailTaken {
			return nil, internal.ErrDuplicateEmail
		}
		account.Email = *dto.Email
	}

	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		account.PasswordHash = hash
	}

	if dto.IsActive != nil {
		account.IsActive = *dto.IsActive
	}

	account.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, account); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	return FromDataModel(account), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to delete user", err)
	}
	return removed, nil
}

func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := s.rbac.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewRoleAssignedEvent(userID, roleID))
	}
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return s.rbac.RevokeRole(ctx, userID, roleID)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
