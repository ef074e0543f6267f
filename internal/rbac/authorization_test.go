package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/org-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubAuthorizer struct {
	allowed bool
	err     error
}

func (s *stubAuthorizer) Check(_ context.Context, _ int64, _, _ string) (bool, error) {
	return s.allowed, s.err
}

var _ = Describe("RequirePermission middleware", func() {
	var (
		authorizer *stubAuthorizer
		authz      *Authorization
		next       http.Handler
		called     bool
	)

	BeforeEach(func() {
		authorizer = &stubAuthorizer{}
		authz = NewAuthorization(authorizer, testLogger())
		called = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
	})

	request := func(withUser bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if withUser {
			ctx := internal.ContextWithUser(req.Context(), &internal.CurrentUser{ID: 1, Username: "alice"})
			req = req.WithContext(ctx)
		}
		rec := httptest.NewRecorder()
		authz.RequirePermission("user", "read")(next).ServeHTTP(rec, req)
		return rec
	}

	It("should return 401 when no identity is in the context", func() {
		rec := request(false)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(called).To(BeFalse())
	})

	It("should pass through when the permission is held", func() {
		authorizer.allowed = true

		rec := request(true)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(called).To(BeTrue())
	})

	It("should return 403 when the permission is not held", func() {
		authorizer.allowed = false

		rec := request(true)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(called).To(BeFalse())
	})

	It("should make a lookup failure indistinguishable from a denial", func() {
		authorizer.err = errors.New("connection reset")

		failureRec := request(true)

		authorizer.err = nil
		authorizer.allowed = false
		denialRec := request(true)

		Expect(failureRec.Code).To(Equal(denialRec.Code))
		Expect(failureRec.Body.String()).To(Equal(denialRec.Body.String()))
		Expect(called).To(BeFalse())
	})
})
