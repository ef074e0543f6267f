package department

import (
	"context"

	"github.com/frahmantamala/org-management/internal"
	deptDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Membership Service", func() {
	var (
		repo    *mockRepo
		service *MembershipService
		ctx     context.Context
		hq, eng *deptDatamodel.Department
	)

	BeforeEach(func() {
		repo = newMockRepo()
		service = NewMembershipService(repo, repo, nil, deptTestLogger())
		ctx = context.Background()

		hq = repo.seed(&deptDatamodel.Department{Name: "HQ", Code: "HQ", Level: 1, IsActive: true})
		eng = repo.seed(&deptDatamodel.Department{Name: "Engineering", Code: "ENG", ParentID: &hq.ID, Level: 2, IsActive: true})
		repo.users[1] = true
		repo.users[2] = true
	})

	Describe("Assign", func() {
		It("should create a membership", func() {
			m, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID, Position: ptrStr("engineer")})

			Expect(err).ToNot(HaveOccurred())
			Expect(m.ID).ToNot(BeZero())
			Expect(m.UserID).To(Equal(int64(1)))
			Expect(m.DepartmentID).To(Equal(eng.ID))
			Expect(m.IsPrimary).To(BeFalse())
		})

		It("should reject an unknown user", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 99, DepartmentID: eng.ID})
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})

		It("should reject an unknown department", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: 999})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("should reject assigning the same user to the same department twice", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).To(Equal(internal.ErrAlreadyMember))
		})

		It("should demote the previous primary when assigning a new primary membership", func() {
			first, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: hq.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(first.IsPrimary).To(BeTrue())

			second, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(second.IsPrimary).To(BeTrue())

			primary, err := service.PrimaryOf(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(primary.DepartmentID).To(Equal(eng.ID))

			all, err := service.ListByUser(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			var primaries int
			for _, m := range all {
				if m.IsPrimary {
					primaries++
				}
			}
			Expect(primaries).To(Equal(1))
		})

		It("should not touch another user's primary membership", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 2, DepartmentID: hq.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: hq.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())

			other, err := service.PrimaryOf(ctx, 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(other).ToNot(BeNil())
			Expect(other.DepartmentID).To(Equal(hq.ID))
		})
	})

	Describe("Update", func() {
		It("should promote a membership and demote the previous primary", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: hq.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())
			m, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Update(ctx, m.ID, UpdateMembershipDTO{IsPrimary: ptrBool(true)})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsPrimary).To(BeTrue())

			primary, err := service.PrimaryOf(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(primary.ID).To(Equal(m.ID))
		})

		It("should keep a promoted membership primary when updated again", func() {
			m, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Update(ctx, m.ID, UpdateMembershipDTO{Position: ptrStr("lead"), IsPrimary: ptrBool(true)})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsPrimary).To(BeTrue())
			Expect(*updated.Position).To(Equal("lead"))
		})

		It("should allow demoting so the user has no primary department", func() {
			m, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Update(ctx, m.ID, UpdateMembershipDTO{IsPrimary: ptrBool(false)})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsPrimary).To(BeFalse())

			primary, err := service.PrimaryOf(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(primary).To(BeNil())
		})

		It("should return not found for a missing membership", func() {
			_, err := service.Update(ctx, 999, UpdateMembershipDTO{Position: ptrStr("ghost")})
			Expect(err).To(Equal(internal.ErrMembershipNotFound))
		})
	})

	Describe("Remove", func() {
		It("should remove a membership without promoting another", func() {
			primary, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: hq.ID, IsPrimary: true})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).ToNot(HaveOccurred())

			removed, err := service.Remove(ctx, primary.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())

			current, err := service.PrimaryOf(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(current).To(BeNil())
		})

		It("should report false for a missing membership", func() {
			removed, err := service.Remove(ctx, 999)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeFalse())
		})
	})

	Describe("PrimaryOf", func() {
		It("should return nil when the user only has non-primary memberships", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).ToNot(HaveOccurred())

			primary, err := service.PrimaryOf(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(primary).To(BeNil())
		})
	})

	Describe("BatchAssign", func() {
		It("should assign new members, skip existing ones, and never set primary", func() {
			_, err := service.Assign(ctx, AssignMemberDTO{UserID: 1, DepartmentID: eng.ID})
			Expect(err).ToNot(HaveOccurred())

			result, err := service.BatchAssign(ctx, BatchAssignDTO{
				DepartmentID: eng.ID,
				UserIDs:      []int64{1, 2},
				Position:     ptrStr("engineer"),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Skipped).To(Equal([]int64{1}))
			Expect(result.Assigned).To(Equal([]int64{2}))

			members, err := service.ListByDepartment(ctx, eng.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(members).To(HaveLen(2))
			for _, m := range members {
				Expect(m.IsPrimary).To(BeFalse())
			}
		})

		It("should fail on an unknown user", func() {
			_, err := service.BatchAssign(ctx, BatchAssignDTO{DepartmentID: eng.ID, UserIDs: []int64{1, 99}})
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})

		It("should fail on an unknown department", func() {
			_, err := service.BatchAssign(ctx, BatchAssignDTO{DepartmentID: 999, UserIDs: []int64{1}})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("should reject an empty user list", func() {
			_, err := service.BatchAssign(ctx, BatchAssignDTO{DepartmentID: eng.ID})
			Expect(err).To(HaveOccurred())
		})
	})
})
