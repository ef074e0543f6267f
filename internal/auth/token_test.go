package auth

import (
	"io"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("TokenService", func() {
	var (
		tokens     *TokenService
		secret     = "0123456789abcdef0123456789abcdef"
		accessTTL  = 15 * time.Minute
		refreshTTL = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		var err error
		tokens, err = NewTokenService(secret, accessTTL, refreshTTL)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("should refuse to construct without a secret", func() {
		_, err := NewTokenService("", accessTTL, refreshTTL)
		gomega.Expect(err).To(gomega.Equal(ErrMissingSecret))
	})

	ginkgo.Describe("round trip", func() {
		ginkgo.It("should validate a token it minted and return the claims", func() {
			tokenString, err := tokens.GenerateAccessToken(42, "alice")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokens.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
			gomega.Expect(claims.Username).To(gomega.Equal("alice"))
			gomega.Expect(claims.Subject).To(gomega.Equal("42"))
		})

		ginkgo.It("should stamp issue and expiry from the injected clock", func() {
			issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			tokens.WithClock(func() time.Time { return issuedAt })

			tokenString, err := tokens.GenerateAccessToken(7, "bob")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokens.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.IssuedAt.Time).To(gomega.Equal(issuedAt))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.Equal(issuedAt.Add(accessTTL)))
		})

		ginkgo.It("should give refresh tokens the longer lifetime", func() {
			issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			tokens.WithClock(func() time.Time { return issuedAt })

			tokenString, err := tokens.GenerateRefreshToken(7, "bob")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokens.Validate(tokenString)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.Equal(issuedAt.Add(refreshTTL)))
		})
	})

	ginkgo.Describe("Validate failures", func() {
		ginkgo.It("should report expiry distinctly", func() {
			issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			tokens.WithClock(func() time.Time { return issuedAt })

			tokenString, err := tokens.GenerateAccessToken(1, "alice")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			tokens.WithClock(func() time.Time { return issuedAt.Add(accessTTL + time.Second) })

			_, err = tokens.Validate(tokenString)
			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
		})

		ginkgo.It("should reject a token signed with a different secret", func() {
			other, err := NewTokenService("ffffffffffffffffffffffffffffffff", accessTTL, refreshTTL)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			tokenString, err := other.GenerateAccessToken(1, "alice")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = tokens.Validate(tokenString)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("should reject malformed input", func() {
			for _, bad := range []string{"", "garbage", "a.b", "a.b.c.d"} {
				_, err := tokens.Validate(bad)
				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			}
		})

		ginkgo.It("should reject a tampered payload", func() {
			tokenString, err := tokens.GenerateAccessToken(1, "alice")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			tampered := tokenString[:len(tokenString)-2] + "xx"
			_, err = tokens.Validate(tampered)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})
})

var _ = ginkgo.Describe("ExtractBearerToken", func() {
	ginkgo.It("should extract the token after the Bearer prefix", func() {
		token, err := ExtractBearerToken("Bearer abc.def.ghi")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).To(gomega.Equal("abc.def.ghi"))
	})

	ginkgo.It("should trim surrounding whitespace around the token", func() {
		token, err := ExtractBearerToken("Bearer   abc.def.ghi  ")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).To(gomega.Equal("abc.def.ghi"))
	})

	ginkgo.It("should reject a lowercase scheme", func() {
		_, err := ExtractBearerToken("bearer abc.def.ghi")
		gomega.Expect(err).To(gomega.Equal(ErrInvalidAuthHeader))
	})

	ginkgo.It("should reject a missing prefix", func() {
		_, err := ExtractBearerToken("abc.def.ghi")
		gomega.Expect(err).To(gomega.Equal(ErrInvalidAuthHeader))
	})

	ginkgo.It("should reject an empty header and a bare prefix", func() {
		_, err := ExtractBearerToken("")
		gomega.Expect(err).To(gomega.Equal(ErrInvalidAuthHeader))

		_, err = ExtractBearerToken("Bearer   ")
		gomega.Expect(err).To(gomega.Equal(ErrInvalidAuthHeader))
	})
})
