package user

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/frahmantamala/org-management/internal"
	"github.com/frahmantamala/org-management/internal/auth"
	userDatamodel "github.com/frahmantamala/org-management/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Module Suite")
}

type mockUserRepo struct {
	users    map[int64]*userDatamodel.User
	nextID   int64
	failWith error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int64]*userDatamodel.User{}}
}

func (m *mockUserRepo) seed(u *userDatamodel.User) *userDatamodel.User {
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(_ context.Context, u *userDatamodel.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	u.ID = m.nextID
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepo) Save(_ context.Context, u *userDatamodel.User) error {
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*userDatamodel.User, int64, error) {
	var all []*userDatamodel.User
	for _, u := range m.users {
		copied := *u
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// mockRBAC returns canned role and permission data for enrichment.
type mockRBAC struct {
	roles map[int64][]string
	perms map[int64]map[string]struct{}
}

func (m *mockRBAC) Resolve(_ context.Context, userID int64) (map[string]struct{}, error) {
	perms, ok := m.perms[userID]
	if !ok {
		return map[string]struct{}{}, nil
	}
	return perms, nil
}

func (m *mockRBAC) Check(ctx context.Context, userID int64, resource, action string) (bool, error) {
	perms, err := m.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := perms[resource+":"+action]
	return ok, nil
}

func (m *mockRBAC) RolesOf(_ context.Context, userID int64) ([]string, error) {
	return m.roles[userID], nil
}

func (m *mockRBAC) RolePermissions(context.Context, int64) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (m *mockRBAC) AssignRole(context.Context, int64, int64) error      { return nil }
func (m *mockRBAC) RevokeRole(context.Context, int64, int64) error      { return nil }
func (m *mockRBAC) GrantPermission(context.Context, int64, int64) error { return nil }
func (m *mockRBAC) RevokePermission(context.Context, int64, int64) error {
	return nil
}

func userTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockUserRepo
		rbacSvc *mockRBAC
		service *Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockUserRepo()
		rbacSvc = &mockRBAC{
			roles: map[int64][]string{},
			perms: map[int64]map[string]struct{}{},
		}
		service = NewService(repo, rbacSvc, nil, bcrypt.MinCost, userTestLogger())
		ctx = context.Background()
	})

	Describe("Register", func() {
		It("should create an active account with a hashed password", func() {
			u, err := service.Register(ctx, RegisterDTO{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "sup3r_secret",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(u.ID).ToNot(BeZero())
			Expect(u.IsActive).To(BeTrue())

			stored, err := repo.GetByID(ctx, u.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored.PasswordHash).ToNot(Equal("sup3r_secret"))
			Expect(auth.VerifyPassword("sup3r_secret", stored.PasswordHash)).To(BeTrue())
		})

		It("should reject a taken username", func() {
			repo.seed(&userDatamodel.User{Username: "alice", Email: "old@example.com"})

			_, err := service.Register(ctx, RegisterDTO{
				Username: "alice",
				Email:    "new@example.com",
				Password: "sup3r_secret",
			})
			Expect(err).To(Equal(internal.ErrDuplicateUsername))
		})

		It("should reject a taken email", func() {
			repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com"})

			_, err := service.Register(ctx, RegisterDTO{
				Username: "bob",
				Email:    "alice@example.com",
				Password: "sup3r_secret",
			})
			Expect(err).To(Equal(internal.ErrDuplicateEmail))
		})

		It("should reject invalid input", func() {
			_, err := service.Register(ctx, RegisterDTO{Username: "alice", Email: "not-an-email", Password: "sup3r_secret"})
			Expect(err).To(HaveOccurred())

			_, err = service.Register(ctx, RegisterDTO{Username: "alice", Email: "alice@example.com", Password: "short"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByID", func() {
		It("should enrich the account with roles and sorted permission keys", func() {
			u := repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com", IsActive: true})
			rbacSvc.roles[u.ID] = []string{"editor"}
			rbacSvc.perms[u.ID] = map[string]struct{}{
				"user:update": {},
				"user:read":   {},
			}

			found, err := service.GetByID(ctx, u.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(found.Roles).To(Equal([]string{"editor"}))
			Expect(found.Permissions).To(Equal([]string{"user:read", "user:update"}))
		})

		It("should return not found for a missing account", func() {
			_, err := service.GetByID(ctx, 999)
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 0; i < 5; i++ {
				repo.seed(&userDatamodel.User{
					Username: string(rune('a' + i)),
					Email:    string(rune('a'+i)) + "@example.com",
				})
			}
		})

		It("should page through accounts", func() {
			page, err := service.List(ctx, 2, 2)

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Total).To(Equal(int64(5)))
			Expect(page.Users).To(HaveLen(2))
			Expect(page.Users[0].Username).To(Equal("c"))
		})

		It("should clamp an out-of-range limit to the default", func() {
			page, err := service.List(ctx, 0, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Limit).To(Equal(20))

			page, err = service.List(ctx, 500, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Limit).To(Equal(20))
		})

		It("should clamp a negative offset to zero", func() {
			page, err := service.List(ctx, 10, -3)
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Offset).To(Equal(0))
			Expect(page.Users).To(HaveLen(5))
		})
	})

	Describe("Update", func() {
		It("should apply only the supplied fields", func() {
			u := repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com", IsActive: true})

			updated, err := service.Update(ctx, u.ID, UpdateUserDTO{IsActive: ptrBool(false)})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Email).To(Equal("alice@example.com"))
		})

		It("should rehash a changed password", func() {
			u := repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com", PasswordHash: "old"})

			_, err := service.Update(ctx, u.ID, UpdateUserDTO{Password: ptrStr("new_password1")})
			Expect(err).ToNot(HaveOccurred())

			stored, err := repo.GetByID(ctx, u.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(auth.VerifyPassword("new_password1", stored.PasswordHash)).To(BeTrue())
		})

		It("should reject an email already used by another account", func() {
			repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com"})
			bob := repo.seed(&userDatamodel.User{Username: "bob", Email: "bob@example.com"})

			_, err := service.Update(ctx, bob.ID, UpdateUserDTO{Email: ptrStr("alice@example.com")})
			Expect(err).To(Equal(internal.ErrDuplicateEmail))
		})

		It("should allow an account to keep its own email", func() {
			u := repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com"})

			_, err := service.Update(ctx, u.ID, UpdateUserDTO{Email: ptrStr("alice@example.com")})
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("should report whether an account was removed", func() {
			u := repo.seed(&userDatamodel.User{Username: "alice", Email: "alice@example.com"})

			removed, err := service.Delete(ctx, u.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())

			removed, err = service.Delete(ctx, u.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeFalse())
		})
	})
})

func ptrStr(v string) *string { return &v }
func ptrBool(v bool) *bool    { return &v }
