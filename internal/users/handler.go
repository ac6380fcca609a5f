package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

// Handler manages team member endpoints.
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

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.createMember)
	})
	r.Group(func(r chi.Router) {
		// Per-record rules are applied by the service.
		r.Use(h.rbac.RequireAny(rbac.PermUsersViewAll, rbac.PermUsersViewOwn))
		r.Get("/", h.listMembers)
		r.Get("/{id}", h.showProfile)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.updateMember)
		r.Post("/{id}/delete", h.deleteMember)
	})
}

type memberRow struct {
	User
	CanEdit   bool
	CanDelete bool
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	members, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("list members failed", slog.Any("error", err))
		h.render(w, r, "pages/team_list.html", map[string]any{"Error": shared.UserSafeMessage(err)}, http.StatusInternalServerError)
		return
	}
	table := h.service.Table()
	rows := make([]memberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberRow{User: m, CanEdit: table.CanEdit(actor, m), CanDelete: table.CanDelete(actor, m)})
	}
	h.render(w, r, "pages/team_list.html", map[string]any{
		"Members":   rows,
		"CanCreate": table.HasPermission(actor, rbac.PermUsersCreate),
	}, http.StatusOK)
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	member, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "view member failed", "You don't have permission to view this user", err, id)
		return
	}
	table := h.service.Table()
	h.render(w, r, "pages/team_profile.html", map[string]any{
		"Member":    member,
		"CanEdit":   table.CanEdit(actor, member),
		"CanDelete": table.CanDelete(actor, member),
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, Input{Role: rbac.RoleUser}, shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := formInput(r)
	member, err := h.service.Create(r.Context(), rbac.ActorFromContext(r.Context()), in)
	if err != nil {
		if errs := formErrors(err); errs != nil {
			h.renderForm(w, r, nil, in, errs, http.StatusBadRequest)
			return
		}
		h.fail(w, r, "create member failed", "You don't have permission to create users", err, "")
		return
	}
	h.logger.Info("member created", slog.String("id", member.ID), slog.String("role", string(member.Role)))
	h.redirectWithFlash(w, r, "/team", "success", "User created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	member, err := h.service.Get(r.Context(), actor, id)
	if err == nil && !h.service.Table().CanEdit(actor, member) {
		err = shared.ErrForbidden
	}
	if err != nil {
		h.fail(w, r, "edit member failed", "You don't have permission to edit this user", err, id)
		return
	}
	h.renderForm(w, r, &member, InputFrom(member), shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	actor := rbac.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := formInput(r)
	member, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		if errs := formErrors(err); errs != nil {
			current, lookupErr := h.service.Lookup(r.Context(), id)
			if lookupErr != nil {
				current = User{ID: id}
			}
			h.renderForm(w, r, &current, in, errs, http.StatusBadRequest)
			return
		}
		h.fail(w, r, "update member failed", "You don't have permission to edit this user", err, id)
		return
	}
	h.redirectWithFlash(w, r, "/team/"+member.ID, "success", "User updated successfully")
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), rbac.ActorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, "delete member failed", "You don't have permission to delete this user", err, id)
		return
	}
	h.logger.Info("member deleted", slog.String("id", id))
	h.redirectWithFlash(w, r, "/team", "success", "User deleted successfully")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, member *User, in Input, errs shared.FieldErrors, status int) {
	actor := rbac.ActorFromContext(r.Context())
	action := "/team"
	var target rbac.Entity
	if member != nil {
		action = "/team/" + member.ID
		target = *member
	}
	h.render(w, r, "pages/team_form.html", map[string]any{
		"Member":      member,
		"Form":        in,
		"Errors":      errs,
		"Action":      action,
		"CanEditRole": h.service.Table().CanAssignRole(actor, target),
		"Roles":       rbac.Roles(),
	}, status)
}

// formInput reads the member form. Experiences arrive as parallel repeated fields.
func formInput(r *http.Request) Input {
	in := Input{
		Name:           r.PostFormValue("name"),
		Email:          r.PostFormValue("email"),
		Phone:          r.PostFormValue("phone"),
		Username:       r.PostFormValue("username"),
		Password:       r.PostFormValue("password"),
		Role:           rbac.Role(r.PostFormValue("role")),
		ProfilePicture: r.PostFormValue("profile_picture"),
		Biography:      r.PostFormValue("biography"),
		AboutMe:        r.PostFormValue("about_me"),
	}
	ids := r.PostForm["exp_id"]
	companies := r.PostForm["exp_company"]
	positions := r.PostForm["exp_position"]
	durations := r.PostForm["exp_duration"]
	descriptions := r.PostForm["exp_description"]
	for i := range companies {
		in.Experiences = append(in.Experiences, Experience{
			ID:          at(ids, i),
			Company:     companies[i],
			Position:    at(positions, i),
			Duration:    at(durations, i),
			Description: at(descriptions, i),
		})
	}
	return in
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// formErrors turns validation and duplicate failures into messages shown next to the form.
func formErrors(err error) shared.FieldErrors {
	if fields := shared.AsFieldErrors(err); fields != nil {
		return fields
	}
	if errors.Is(err, shared.ErrDuplicate) {
		return shared.FieldErrors{"username": "is already taken"}
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg, denied string, err error, id string) {
	switch {
	case errors.Is(err, shared.ErrForbidden):
		h.logger.Warn(msg, slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/team", "error", "Access Denied: "+denied)
	case errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/team", "error", shared.UserSafeMessage(err))
	default:
		h.logger.Error(msg, slog.Any("error", err), slog.String("id", id))
		h.redirectWithFlash(w, r, "/team", "error", shared.UserSafeMessage(err))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	h.templates.RenderPage(w, r, h.csrf, status, template, "Team", data)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
