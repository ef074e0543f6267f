package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	credentials   map[string]mockCredentials
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

type mockCredentials struct {
	userID   int64
	hash     string
	isActive bool
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		credentials: map[string]mockCredentials{
			"alice": {userID: 1, hash: string(hashedPassword), isActive: true},
			"admin": {userID: 2, hash: string(hashedPassword), isActive: true},
			"bob":   {userID: 3, hash: string(hashedPassword), isActive: false},
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Username: "alice", Email: "alice@example.com", IsActive: true, Permissions: []string{"user:read"}},
			2: {ID: 2, Username: "admin", Email: "admin@example.com", IsActive: true, Permissions: []string{"user:read", "user:update", "role:update"}},
			3: {ID: 3, Username: "bob", Email: "bob@example.com", IsActive: false},
		},
	}
}

func (m *mockUserRepository) GetCredentials(username string) (int64, string, bool, error) {
	if m.returnError {
		return 0, "", false, m.errorToReturn
	}

	if creds, exists := m.credentials[username]; exists {
		return creds.userID, creds.hash, creds.isActive, nil
	}
	return 0, "", false, errors.New("user not found")
}

func (m *mockUserRepository) GetUserByID(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service    *Service
		mockRepo   *mockUserRepository
		tokens     *TokenService
		secret     = "0123456789abcdef0123456789abcdef"
		accessTTL  = 15 * time.Minute
		refreshTTL = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		var err error
		mockRepo = newMockUserRepository()
		tokens, err = NewTokenService(secret, accessTTL, refreshTTL)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		service = NewService(mockRepo, tokens, newTestLogger())
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				dto := LoginDTO{Username: "alice", Password: "correct_password"}

				result, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(result.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(result.AccessToken).ToNot(gomega.Equal(result.RefreshToken))
				gomega.Expect(result.TokenType).To(gomega.Equal("Bearer"))
				gomega.Expect(result.ExpiresIn).To(gomega.Equal(int64(accessTTL.Seconds())))
			})

			ginkgo.It("should embed identity claims in the access token", func() {
				dto := LoginDTO{Username: "admin", Password: "correct_password"}

				result, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(result.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Username).To(gomega.Equal("admin"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return the same error for an unknown username", func() {
				dto := LoginDTO{Username: "nobody", Password: "any_password"}

				result, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(result.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return the same error for a wrong password", func() {
				dto := LoginDTO{Username: "alice", Password: "wrong_password"}

				result, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(result.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should not leak account existence on storage failure", func() {
				mockRepo.setError(errors.New("connection refused"))
				dto := LoginDTO{Username: "alice", Password: "correct_password"}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the account is inactive", func() {
			ginkgo.It("should reject even with the correct password", func() {
				dto := LoginDTO{Username: "bob", Password: "correct_password"}

				result, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
				gomega.Expect(result.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty username", func() {
				dto := LoginDTO{Username: "", Password: "password"}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("username is required"))
			})

			ginkgo.It("should return validation error for empty password", func() {
				dto := LoginDTO{Username: "alice", Password: ""}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue a fresh pair for a valid refresh token", func() {
			login, err := service.Authenticate(LoginDTO{Username: "alice", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(login.RefreshToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(refreshed.RefreshToken).ToNot(gomega.BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should reject a garbage token", func() {
			_, err := service.RefreshTokens("not-a-token")

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("should reject when the user has been deactivated since issue", func() {
			login, err := service.Authenticate(LoginDTO{Username: "alice", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			mockRepo.usersByID[1].IsActive = false

			_, err = service.RefreshTokens(login.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
		})
	})
})

var _ = ginkgo.Describe("Password hashing", func() {
	ginkgo.It("should produce different digests for the same input", func() {
		first, err := HashPassword("s3cret-password", bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		second, err := HashPassword("s3cret-password", bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(first).ToNot(gomega.Equal(second))
		gomega.Expect(VerifyPassword("s3cret-password", first)).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword("s3cret-password", second)).To(gomega.BeTrue())
	})

	ginkgo.It("should fail verification on any byte difference", func() {
		hash, err := HashPassword("s3cret-password", bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(VerifyPassword("S3cret-password", hash)).To(gomega.BeFalse())
		gomega.Expect(VerifyPassword("s3cret-password ", hash)).To(gomega.BeFalse())
		gomega.Expect(VerifyPassword("", hash)).To(gomega.BeFalse())
	})

	ginkgo.It("should report false for a malformed stored hash", func() {
		gomega.Expect(VerifyPassword("anything", "not-a-bcrypt-hash")).To(gomega.BeFalse())
	})
})
