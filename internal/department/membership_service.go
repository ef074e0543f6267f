package department

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/org-management/internal"
	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
	"github.com/frahmantamala/org-management/internal/core/events"
)

// MembershipRepositoryAPI is the storage surface for user-department links.
// Implementations must apply the clearPrimary flag and the write in one
// transaction so at most one membership per user is primary at any point.
type MembershipRepositoryAPI interface {
	GetMembership(ctx context.Context, id int64) (*deptDatamodel.UserDepartment, error)
	FindMembership(ctx context.Context, userID, departmentID int64) (*deptDatamodel.UserDepartment, error)
	FindPrimary(ctx context.Context, userID int64) (*deptDatamodel.UserDepartment, error)
	ListByUser(ctx context.Context, userID int64) ([]*deptDatamodel.UserDepartment, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*deptDatamodel.UserDepartment, error)
	CreateMembership(ctx context.Context, m *deptDatamodel.UserDepartment, clearPrimary bool) error
	SaveMembership(ctx context.Context, m *deptDatamodel.UserDepartment, clearPrimary bool) error
	DeleteMembership(ctx context.Context, id int64) (bool, error)
}

type MembershipService struct {
	repo     MembershipRepositoryAPI
	deptRepo RepositoryAPI
	events   *events.EventBus
	logger   *slog.Logger
}

func NewMembershipService(repo MembershipRepositoryAPI, deptRepo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		repo:     repo,
		deptRepo: deptRepo,
		events:   bus,
		logger:   logger,
	}
}

// Assign links a user to a department. Assigning a user who already belongs
// to the department is a conflict. When the new membership is primary, any
// other primary membership of the user is demoted in the same transaction.
func (s *MembershipService) Assign(ctx context.Context, dto AssignMemberDTO) (*Membership, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	userExists, err := s.deptRepo.UserExists(ctx, dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check user", err)
	}
	if !userExists {
		return nil, internal.ErrUserNotFound
	}

	dept, err := s.deptRepo.GetByID(ctx, dto.DepartmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	existing, err := s.repo.FindMembership(ctx, dto.UserID, dto.DepartmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check membership", err)
	}
	if existing != nil {
		return nil, internal.ErrAlreadyMember
	}

	membership := &deptDatamodel.UserDepartment{
		UserID:       dto.UserID,
		DepartmentID: dto.DepartmentID,
		Position:     dto.Position,
		IsPrimary:    dto.IsPrimary,
	}

	if err := s.repo.CreateMembership(ctx, membership, dto.IsPrimary); err != nil {
		return nil, internal.NewInternalError("failed to create membership", err)
	}

	if dto.IsPrimary && s.events != nil {
		_ = s.events.Publish(ctx, events.NewPrimaryDepartmentChangedEvent(dto.UserID, dto.DepartmentID))
	}

	s.logger.Info("membership created",
		"user_id", dto.UserID, "department_id", dto.DepartmentID, "is_primary", dto.IsPrimary)
	return MembershipFromDataModel(membership), nil
}

// Update applies a partial membership update. Promoting a membership to
// primary demotes the user's other primary membership in the same
// transaction; demoting one leaves the user with no primary department.
func (s *MembershipService) Update(ctx context.Context, id int64, dto UpdateMembershipDTO) (*Membership, error) {
	membership, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load membership", err)
	}
	if membership == nil {
		return nil, internal.ErrMembershipNotFound
	}

	if dto.Position != nil {
		membership.Position = dto.Position
	}

	promoted := false
	if dto.IsPrimary != nil {
		promoted = *dto.IsPrimary && !membership.IsPrimary
		membership.IsPrimary = *dto.IsPrimary
	}

	membership.UpdatedAt = time.Now()
	if err := s.repo.SaveMembership(ctx, membership, dto.IsPrimary != nil && *dto.IsPrimary); err != nil {
		return nil, internal.NewInternalError("failed to update membership", err)
	}

	if promoted && s.events != nil {
		_ = s.events.Publish(ctx, events.NewPrimaryDepartmentChangedEvent(membership.UserID, membership.DepartmentID))
	}

	return MembershipFromDataModel(membership), nil
}

// Remove deletes a membership. Removing a primary membership does not
// promote another one; the user simply has no primary department until a
// new one is set. The bool result reports whether a row was removed.
func (s *MembershipService) Remove(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.DeleteMembership(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to delete membership", err)
	}
	return removed, nil
}

func (s *MembershipService) GetByID(ctx context.Context, id int64) (*Membership, error) {
	membership, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load membership", err)
	}
	if membership == nil {
		return nil, internal.ErrMembershipNotFound
	}
	return MembershipFromDataModel(membership), nil
}

func (s *MembershipService) ListByUser(ctx context.Context, userID int64) ([]*Membership, error) {
	memberships, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list memberships", err)
	}
	return toMemberships(memberships), nil
}

func (s *MembershipService) ListByDepartment(ctx context.Context, departmentID int64) ([]*Membership, error) {
	dept, err := s.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	memberships, err := s.repo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list memberships", err)
	}
	return toMemberships(memberships), nil
}

// PrimaryOf returns the user's primary membership, or nil when the user has
// none.
func (s *MembershipService) PrimaryOf(ctx context.Context, userID int64) (*Membership, error) {
	membership, err := s.repo.FindPrimary(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load primary membership", err)
	}
	return MembershipFromDataModel(membership), nil
}

// BatchAssign links several users to one department. Users who already
// belong to the department are skipped. Batch assignments never set the
// primary flag.
func (s *MembershipService) BatchAssign(ctx context.Context, dto BatchAssignDTO) (*BatchAssignResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept, err := s.deptRepo.GetByID(ctx, dto.DepartmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	result := &BatchAssignResult{
		Assigned: []int64{},
		Skipped:  []int64{},
	}

	for _, userID := range dto.UserIDs {
		userExists, err := s.deptRepo.UserExists(ctx, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check user", err)
		}
		if !userExists {
			return nil, internal.ErrUserNotFound
		}

		existing, err := s.repo.FindMembership(ctx, userID, dto.DepartmentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check membership", err)
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, userID)
			continue
		}

		membership := &deptDatamodel.UserDepartment{
			UserID:       userID,
			DepartmentID: dto.DepartmentID,
			Position:     dto.Position,
		}
		if err := s.repo.CreateMembership(ctx, membership, false); err != nil {
			return nil, internal.NewInternalError("failed to create membership", err)
		}
		result.Assigned = append(result.Assigned, userID)
	}

	s.logger.Info("batch membership assignment",
		"department_id", dto.DepartmentID, "assigned", len(result.Assigned), "skipped", len(result.Skipped))
	return result, nil
}

func toMemberships(models []*deptDatamodel.UserDepartment) []*Membership {
	result := make([]*Membership, 0, len(models))
	for _, m := range models {
		result = append(result, MembershipFromDataModel(m))
	}
	return result
}
