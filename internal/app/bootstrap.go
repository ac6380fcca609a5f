package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/news"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

// SessionCookieName names the session cookie.
const SessionCookieName = "odyssey_session"

// developmentAdminPassword is used outside production when SEED_ADMIN_PASSWORD is unset.
const developmentAdminPassword = "admin123"

// Build wires stores, services and handlers into the HTTP router.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger, redisClient redis.UniversalClient, metrics *observability.Metrics) (http.Handler, error) {
	table := rbac.Default()

	userStore := store.NewMemory[users.User]()
	newsStore := store.NewMemory[news.Post]()
	if err := seed(ctx, cfg, logger, userStore, newsStore); err != nil {
		return nil, err
	}

	sessionManager := shared.NewSessionManager(redisClient, SessionCookieName, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(table, logger)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	var recorder rbac.DecisionRecorder
	if metrics != nil {
		recorder = metrics
	}
	rbacMiddleware := rbac.Middleware{Table: table, Logger: logger, Recorder: recorder}

	usersService := users.NewService(userStore, table)
	newsService := news.NewService(newsStore, table)
	authService := auth.NewService(usersService)

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthService:      authService,
		AuthHandler:      auth.NewHandler(logger, authService, templates, sessionManager, csrfManager),
		DashboardHandler: dashboard.NewHandler(logger, usersService, newsService, templates, csrfManager, rbacMiddleware),
		NewsHandler:      news.NewHandler(logger, newsService, templates, csrfManager, rbacMiddleware),
		UsersHandler:     users.NewHandler(logger, usersService, templates, csrfManager, rbacMiddleware),
		RolesHandler:     roles.NewHandler(logger, roles.NewService(table), templates, csrfManager, rbacMiddleware),
		Metrics:          metrics,
	}), nil
}

func seed(ctx context.Context, cfg *Config, logger *slog.Logger, userStore store.Store[users.User], newsStore store.Store[news.Post]) error {
	password := cfg.SeedAdminPassword
	if password == "" && !cfg.IsProduction() {
		logger.Warn("SEED_ADMIN_PASSWORD not set, using development default for admin")
		password = developmentAdminPassword
	}
	if err := users.Seed(ctx, userStore, password); err != nil {
		return err
	}
	if !cfg.SeedDemoData {
		return nil
	}
	admin, err := userStore.Get(ctx, users.AdminID)
	if err != nil {
		return fmt.Errorf("seed news: %w", err)
	}
	return news.Seed(ctx, newsStore, admin.ID, admin.Name)
}
