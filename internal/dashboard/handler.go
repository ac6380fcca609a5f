// Package dashboard serves the landing page and the read-only JSON API.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-admin/internal/news"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

const recentPostLimit = 3

// Handler renders the overview and the API.
type Handler struct {
	logger    *slog.Logger
	users     *users.Service
	news      *news.Service
	table     *rbac.Table
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, usersSvc *users.Service, newsSvc *news.Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		users:     usersSvc,
		news:      newsSvc,
		table:     usersSvc.Table(),
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
	}
}

// MountRoutes registers the landing page.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireActor()).Get("/", h.showHome)
}

// MountAPI registers JSON endpoints. They answer 401 instead of redirecting.
func (h *Handler) MountAPI(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(requireAPIActor)
		r.Get("/me", h.me)
		r.Get("/team", h.team)
		r.Get("/news", h.listNews)
	})
}

// Overview aggregates what the current actor can see.
type Overview struct {
	NewsCount      int
	PublishedCount int
	TeamCount      int
	RecentPosts    []news.Post
	Permissions    []rbac.Permission
}

// Overview loads news and team data concurrently.
func (h *Handler) Overview(ctx context.Context, actor *rbac.Actor) (Overview, error) {
	out := Overview{Permissions: h.table.PermissionsFor(actor.Role).Sorted()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !h.table.HasPermission(actor, rbac.PermNewsView) {
			return nil
		}
		posts, err := h.news.List(ctx, actor)
		if err != nil {
			return err
		}
		out.NewsCount = len(posts)
		for _, p := range posts {
			if p.Status == news.StatusPublished {
				out.PublishedCount++
			}
		}
		out.RecentPosts = posts[:min(recentPostLimit, len(posts))]
		return nil
	})
	g.Go(func() error {
		members, err := h.users.List(ctx, actor)
		if err != nil {
			return err
		}
		out.TeamCount = len(members)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (h *Handler) showHome(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	overview, err := h.Overview(r.Context(), actor)
	if err != nil {
		h.logger.Error("load overview", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.templates.RenderPage(w, r, h.csrf, http.StatusOK, "pages/home.html", "Dashboard", map[string]any{
		"NewsCount":      overview.NewsCount,
		"PublishedCount": overview.PublishedCount,
		"TeamCount":      overview.TeamCount,
		"RecentPosts":    overview.RecentPosts,
		"Permissions":    overview.Permissions,
	})
}

type meResponse struct {
	User        users.User        `json:"user"`
	Role        rbac.Role         `json:"role"`
	RoleLabel   string            `json:"role_label"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	user, err := h.users.Get(r.Context(), actor, actor.ID)
	if err != nil {
		h.respondError(w, "api me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		User:        user,
		Role:        actor.Role,
		RoleLabel:   actor.Role.Label(),
		Permissions: h.table.PermissionsFor(actor.Role).Sorted(),
	})
}

func (h *Handler) team(w http.ResponseWriter, r *http.Request) {
	members, err := h.users.List(r.Context(), rbac.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, "api team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *Handler) listNews(w http.ResponseWriter, r *http.Request) {
	posts, err := h.news.List(r.Context(), rbac.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, "api news", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *Handler) respondError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrNotFound):
		h.logger.Warn(msg, slog.Any("error", err))
	default:
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func requireAPIActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rbac.ActorFromContext(r.Context()) == nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
