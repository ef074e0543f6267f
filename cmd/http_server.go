package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/org-management/internal"
	"github.com/frahmantamala/org-management/internal/auth"
	authPostgres "github.com/frahmantamala/org-management/internal/auth/postgres"
	"github.com/frahmantamala/org-management/internal/core/events"
	"github.com/frahmantamala/org-management/internal/department"
	deptPostgres "github.com/frahmantamala/org-management/internal/department/postgres"
	"github.com/frahmantamala/org-management/internal/permission"
	permPostgres "github.com/frahmantamala/org-management/internal/permission/postgres"
	"github.com/frahmantamala/org-management/internal/rbac"
	rbacPostgres "github.com/frahmantamala/org-management/internal/rbac/postgres"
	"github.com/frahmantamala/org-management/internal/role"
	rolePostgres "github.com/frahmantamala/org-management/internal/role/postgres"
	"github.com/frahmantamala/org-management/internal/transport/rest"
	"github.com/frahmantamala/org-management/internal/user"
	userPostgres "github.com/frahmantamala/org-management/internal/user/postgres"
	"github.com/frahmantamala/org-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	cfg := deps.Config

	eventBus := events.NewEventBus(lg)

	tokenService, err := auth.NewTokenService(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	authRepo := authPostgres.NewRepository(deps.GormDB)
	authService := auth.NewService(authRepo, tokenService, lg)
	authHandler := auth.NewHandler(authService)

	rbacRepo := rbacPostgres.NewRepository(deps.GormDB)
	rbacService := rbac.NewService(rbacRepo, lg)
	authz := rbac.NewAuthorization(rbacService, lg)

	userRepo := userPostgres.NewRepository(deps.GormDB)
	userService := user.NewService(userRepo, rbacService, eventBus, cfg.Security.BCryptCost, lg)
	userHandler := user.NewHandler(lg, userService)

	roleRepo := rolePostgres.NewRepository(deps.GormDB)
	roleService := role.NewService(roleRepo, rbacService, lg)
	roleHandler := role.NewHandler(lg, roleService)

	permRepo := permPostgres.NewRepository(deps.GormDB)
	permService := permission.NewService(permRepo, lg)
	permHandler := permission.NewHandler(lg, permService)

	deptRepo := deptPostgres.NewRepository(deps.GormDB)
	deptService := department.NewService(deptRepo, eventBus, lg)
	deptHandler := department.NewHandler(lg, deptService)

	membershipService := department.NewMembershipService(deptRepo, deptRepo, eventBus, lg)
	membershipHandler := department.NewMembershipHandler(lg, membershipService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:       authHandler,
		User:       userHandler,
		Role:       roleHandler,
		Permission: permHandler,
		Department: deptHandler,
		Membership: membershipHandler,
	}, authz, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
