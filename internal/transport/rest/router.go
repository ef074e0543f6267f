package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/org-management/internal/auth"
	"github.com/frahmantamala/org-management/internal/department"
	"github.com/frahmantamala/org-management/internal/permission"
	"github.com/frahmantamala/org-management/internal/rbac"
	"github.com/frahmantamala/org-management/internal/role"
	"github.com/frahmantamala/org-management/internal/transport/middleware"
	"github.com/frahmantamala/org-management/internal/transport/swagger"
	"github.com/frahmantamala/org-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Role       *role.Handler
	Permission *permission.Handler
	Department *department.Handler
	Membership *department.MembershipHandler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authz *rbac.Authorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/register", h.User.Register)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/auth/me", h.Auth.Me)
			pr.Get("/users/me", h.User.GetCurrentUser)

			// User management requires user:* permissions
			pr.Route("/users", func(ur chi.Router) {
				ur.With(authz.RequirePermission("user", "read")).Get("/", h.User.ListUsers)
				ur.With(authz.RequirePermission("user", "read")).Get("/{id}", h.User.GetUser)
				ur.With(authz.RequirePermission("user", "update")).Patch("/{id}", h.User.UpdateUser)
				ur.With(authz.RequirePermission("user", "delete")).Delete("/{id}", h.User.DeleteUser)

				ur.With(authz.RequirePermission("user", "update")).
					Post("/{id}/roles/{roleId}", h.User.AssignRole)
				ur.With(authz.RequirePermission("user", "update")).
					Delete("/{id}/roles/{roleId}", h.User.RevokeRole)

				ur.Get("/{userId}/departments", h.Membership.ListUserMemberships)
				ur.Get("/{userId}/departments/primary", h.Membership.GetPrimaryDepartment)
			})

			// Role management requires role:* permissions
			pr.Route("/roles", func(rr chi.Router) {
				rr.With(authz.RequirePermission("role", "read")).Get("/", h.Role.ListRoles)
				rr.With(authz.RequirePermission("role", "read")).Get("/{id}", h.Role.GetRole)
				rr.With(authz.RequirePermission("role", "create")).Post("/", h.Role.CreateRole)
				rr.With(authz.RequirePermission("role", "update")).Patch("/{id}", h.Role.UpdateRole)
				rr.With(authz.RequirePermission("role", "delete")).Delete("/{id}", h.Role.DeleteRole)

				rr.With(authz.RequirePermission("role", "read")).
					Get("/{id}/permissions", h.Role.GetRolePermissions)
				rr.With(authz.RequirePermission("role", "update")).
					Post("/{id}/permissions/{permissionId}", h.Role.GrantPermission)
				rr.With(authz.RequirePermission("role", "update")).
					Delete("/{id}/permissions/{permissionId}", h.Role.RevokePermission)
			})

			// Permission management requires permission:* permissions
			pr.Route("/permissions", func(pmr chi.Router) {
				pmr.With(authz.RequirePermission("permission", "read")).Get("/", h.Permission.ListPermissions)
				pmr.With(authz.RequirePermission("permission", "read")).Get("/{id}", h.Permission.GetPermission)
				pmr.With(authz.RequirePermission("permission", "create")).Post("/", h.Permission.CreatePermission)
				pmr.With(authz.RequirePermission("permission", "update")).Patch("/{id}", h.Permission.UpdatePermission)
				pmr.With(authz.RequirePermission("permission", "delete")).Delete("/{id}", h.Permission.DeletePermission)
			})

			// Department and membership routes only require authentication
			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.ListDepartments)
				dr.Get("/tree", h.Department.GetDepartmentTree)
				dr.Get("/{id}", h.Department.GetDepartment)
				dr.Post("/", h.Department.CreateDepartment)
				dr.Patch("/{id}", h.Department.UpdateDepartment)
				dr.Delete("/{id}", h.Department.DeleteDepartment)
				dr.Get("/{id}/members", h.Membership.ListDepartmentMembers)
			})

			pr.Route("/user-departments", func(mr chi.Router) {
				mr.Post("/", h.Membership.AssignMember)
				mr.Post("/batch", h.Membership.BatchAssignMembers)
				mr.Get("/{id}", h.Membership.GetMembership)
				mr.Patch("/{id}", h.Membership.UpdateMembership)
				mr.Delete("/{id}", h.Membership.RemoveMembership)
			})
		})
	})
}
