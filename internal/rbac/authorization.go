package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/org-management/internal"
)

// Authorizer is the permission-check entry point route guards use.
type Authorizer interface {
	Check(ctx context.Context, userID int64, resource, action string) (bool, error)
}

type Authorization struct {
	authorizer Authorizer
	logger     *slog.Logger
}

func NewAuthorization(authorizer Authorizer, logger *slog.Logger) *Authorization {
	return &Authorization{
		authorizer: authorizer,
		logger:     logger,
	}
}

// RequirePermission guards a route with a resource:action check. A missing
// identity is a 401. A failed check AND a failed lookup are both a 403, so
// an unauthorized caller cannot distinguish a storage failure from a plain
// denial; the underlying error is only logged.
func (a *Authorization) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				a.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := a.authorizer.Check(r.Context(), user.ID, resource, action)
			if err != nil {
				a.logger.ErrorContext(r.Context(), "permission lookup failed",
					"error", err,
					"user_id", user.ID,
					"resource", resource,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			if !allowed {
				a.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", PermissionKey(resource, action))
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
