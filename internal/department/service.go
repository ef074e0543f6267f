package department

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/org-management/internal"
	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
	"github.com/frahmantamala/org-management/internal/core/events"
)

// RepositoryAPI is the storage surface the hierarchy manager needs. GetByID
// returns (nil, nil) for a missing row.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*deptDatamodel.Department, error)
	GetAll(ctx context.Context) ([]*deptDatamodel.Department, error)
	Count(ctx context.Context) (int64, error)
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, dept *deptDatamodel.Department) error
	Save(ctx context.Context, dept *deptDatamodel.Department) error
	Delete(ctx context.Context, id int64) (bool, error)
	CountChildren(ctx context.Context, id int64) (int64, error)
	CountMembers(ctx context.Context, departmentID int64) (int64, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	events *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: bus,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.CodeExists(ctx, dto.Code, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department code", err)
	}
	if exists {
		return nil, internal.ErrDuplicateCode
	}

	if dto.ManagerID != nil {
		managerExists, err := s.repo.UserExists(ctx, *dto.ManagerID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check manager", err)
		}
		if !managerExists {
			return nil, internal.ErrManagerNotFound
		}
	}

	level := 1
	if dto.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *dto.ParentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load parent department", err)
		}
		if parent == nil {
			return nil, internal.ErrParentNotFound
		}
		level = parent.Level + 1
	}

	dept := &deptDatamodel.Department{
		Name:        dto.Name,
		Code:        dto.Code,
		ParentID:    dto.ParentID,
		Level:       level,
		SortOrder:   dto.SortOrder,
		Description: dto.Description,
		ManagerID:   dto.ManagerID,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "id", dept.ID, "code", dept.Code, "level", dept.Level)
	return FromDataModel(dept), nil
}

// Update applies a partial update. Only supplied fields change. A parent
// change recomputes this department's level but does not cascade into the
// levels of existing descendants.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if dto.Name != nil {
		dept.Name = *dto.Name
	}

	if dto.Code != nil {
		exists, err := s.repo.CodeExists(ctx, *dto.Code, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check department code", err)
		}
		if exists {
			return nil, internal.ErrDuplicateCode
		}
		dept.Code = *dto.Code
	}

	if dto.ParentID != nil {
		newParentID := *dto.ParentID
		if newParentID == id {
			return nil, internal.ErrSelfParent
		}

		parent, err := s.repo.GetByID(ctx, newParentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load parent department", err)
		}
		if parent == nil {
			return nil, internal.ErrParentNotFound
		}

		isAncestor, err := s.isAncestor(ctx, id, newParentID)
		if err != nil {
			return nil, err
		}
		if isAncestor {
			return nil, internal.ErrCyclicParent
		}

		dept.ParentID = dto.ParentID
		dept.Level = parent.Level + 1
	}

	if dto.SortOrder != nil {
		dept.SortOrder = *dto.SortOrder
	}

	if dto.Description != nil {
		dept.Description = dto.Description
	}

	if dto.ManagerID != nil {
		managerExists, err := s.repo.UserExists(ctx, *dto.ManagerID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check manager", err)
		}
		if !managerExists {
			return nil, internal.ErrManagerNotFound
		}
		dept.ManagerID = dto.ManagerID
	}

	if dto.IsActive != nil {
		dept.IsActive = *dto.IsActive
	}

	dept.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, dept); err != nil {
		return nil, internal.NewInternalError("failed to update department", err)
	}

	return FromDataModel(dept), nil
}

// Delete removes a department. Departments with children or members cannot
// be deleted; the caller has to resolve dependents first. The bool result
// reports whether a row was actually removed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return false, nil
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to count children", err)
	}
	if children > 0 {
		return false, internal.ErrHasChildren
	}

	members, err := s.repo.CountMembers(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to count members", err)
	}
	if members > 0 {
		return false, internal.ErrHasMembers
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to delete department", err)
	}

	if removed && s.events != nil {
		_ = s.events.Publish(ctx, events.NewDepartmentDeletedEvent(id, dept.Code))
	}

	return removed, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return FromDataModel(dept), nil
}

// List returns all departments ordered by (sort_order, id).
func (s *Service) List(ctx context.Context) ([]*Department, error) {
	depts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	result := make([]*Department, 0, len(depts))
	for _, d := range depts {
		result = append(result, FromDataModel(d))
	}
	return result, nil
}

// Tree assembles the department forest annotated with live member counts.
// Roots are placed first, then each remaining department is attached under
// its parent wherever that parent sits in the forest assembled so far. A
// department whose declared parent is missing from the loaded set is
// silently dropped. Sibling lists are sorted by (sort_order, id).
func (s *Service) Tree(ctx context.Context) ([]*TreeNode, error) {
	depts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	pending := make(map[int64]*TreeNode, len(depts))
	for _, d := range depts {
		count, err := s.repo.CountMembers(ctx, d.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to count members", err)
		}
		pending[d.ID] = &TreeNode{
			ID:          d.ID,
			Name:        d.Name,
			Code:        d.Code,
			Level:       d.Level,
			SortOrder:   d.SortOrder,
			Description: d.Description,
			ManagerID:   d.ManagerID,
			IsActive:    d.IsActive,
			MemberCount: count,
			Children:    []*TreeNode{},
		}
	}

	var forest []*TreeNode
	for _, d := range depts {
		if d.ParentID == nil {
			forest = append(forest, pending[d.ID])
			delete(pending, d.ID)
		}
	}

	for _, d := range depts {
		if d.ParentID == nil {
			continue
		}
		child, ok := pending[d.ID]
		if !ok {
			continue
		}
		if parent := findNode(forest, *d.ParentID); parent != nil {
			parent.Children = append(parent.Children, child)
			delete(pending, d.ID)
		} else {
			s.logger.Debug("dropping orphaned department from tree",
				"id", d.ID, "code", d.Code, "parent_id", *d.ParentID)
		}
	}

	sortForest(forest)
	return forest, nil
}

// isAncestor reports whether candidateID appears in ofID's parent chain.
// The walk is bounded by the total node count so it terminates even when a
// prior bug left a cycle in the stored data.
func (s *Service) isAncestor(ctx context.Context, candidateID, ofID int64) (bool, error) {
	bound, err := s.repo.Count(ctx)
	if err != nil {
		return false, internal.NewInternalError("failed to count departments", err)
	}

	currentID := ofID
	for steps := int64(0); ; steps++ {
		if steps > bound {
			return false, internal.ErrCorruptHierarchy
		}

		dept, err := s.repo.GetByID(ctx, currentID)
		if err != nil {
			return false, internal.NewInternalError("failed to load department", err)
		}
		if dept == nil || dept.ParentID == nil {
			return false, nil
		}
		if *dept.ParentID == candidateID {
			return true, nil
		}
		currentID = *dept.ParentID
	}
}

func findNode(forest []*TreeNode, id int64) *TreeNode {
	for _, node := range forest {
		if node.ID == id {
			return node
		}
		if found := findNode(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

func sortForest(forest []*TreeNode) {
	sort.Slice(forest, func(i, j int) bool {
		if forest[i].SortOrder != forest[j].SortOrder {
			return forest[i].SortOrder < forest[j].SortOrder
		}
		return forest[i].ID < forest[j].ID
	})

	for _, node := range forest {
		sortForest(node.Children)
	}
}
