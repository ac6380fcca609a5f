package news

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

const postsPerPage = 10

// Handler manages news post endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers news routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermNewsCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.createPost)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermNewsView))
		r.Get("/", h.listPosts)
		r.Get("/{id}", h.showPost)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermNewsEdit))
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.updatePost)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermNewsDelete))
		r.Post("/{id}/delete", h.deletePost)
	})
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	posts, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("list news failed", slog.Any("error", err))
		h.render(w, r, "pages/news_list.html", map[string]any{"Error": shared.UserSafeMessage(err)}, http.StatusInternalServerError)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, postsPerPage, len(posts))
	h.render(w, r, "pages/news_list.html", map[string]any{
		"Posts":      posts[pagination.Offset():pagination.End()],
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) showPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.service.Get(r.Context(), rbac.ActorFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, "get news failed", err, id)
		return
	}
	h.render(w, r, "pages/news_detail.html", map[string]any{"Post": post}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, Input{Status: StatusDraft}, shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := formInput(r)
	post, err := h.service.Create(r.Context(), rbac.ActorFromContext(r.Context()), in)
	if err != nil {
		if fields := shared.AsFieldErrors(err); fields != nil {
			h.renderForm(w, r, nil, in, fields, http.StatusBadRequest)
			return
		}
		h.fail(w, r, "create news failed", err, "")
		return
	}
	h.redirectWithFlash(w, r, "/news/"+post.ID, "success", "News post created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.service.Get(r.Context(), rbac.ActorFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, "get news failed", err, id)
		return
	}
	h.renderForm(w, r, &post, InputFrom(post), shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := formInput(r)
	post, err := h.service.Update(r.Context(), rbac.ActorFromContext(r.Context()), id, in)
	if err != nil {
		if fields := shared.AsFieldErrors(err); fields != nil {
			h.renderForm(w, r, &Post{ID: id}, in, fields, http.StatusBadRequest)
			return
		}
		h.fail(w, r, "update news failed", err, id)
		return
	}
	h.redirectWithFlash(w, r, "/news/"+post.ID, "success", "News post updated successfully")
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), rbac.ActorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, "delete news failed", err, id)
		return
	}
	h.redirectWithFlash(w, r, "/news", "success", "News post deleted successfully")
}

func formInput(r *http.Request) Input {
	return Input{
		Title:       r.PostFormValue("title"),
		Content:     r.PostFormValue("content"),
		Excerpt:     r.PostFormValue("excerpt"),
		BannerImage: r.PostFormValue("banner_image"),
		Images:      strings.Split(r.PostFormValue("images"), "\n"),
		Status:      Status(r.PostFormValue("status")),
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, post *Post, in Input, errs shared.FieldErrors, status int) {
	action := "/news"
	if post != nil {
		action = "/news/" + post.ID
	}
	h.render(w, r, "pages/news_form.html", map[string]any{
		"Post":     post,
		"Form":     in,
		"Errors":   errs,
		"Action":   action,
		"Statuses": []Status{StatusDraft, StatusPublished},
	}, status)
}

// fail maps service errors onto a flash and a redirect back to the list.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, id string) {
	switch {
	case errors.Is(err, shared.ErrForbidden):
		h.logger.Warn(msg, slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/news", "error", "Access Denied: "+shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/news", "error", shared.UserSafeMessage(err))
	default:
		h.logger.Error(msg, slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/news", "error", shared.UserSafeMessage(err))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	h.templates.RenderPage(w, r, h.csrf, status, template, "News", data)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
