package view

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	table     *rbac.Table
	logger    *slog.Logger
}

// NavItem is one entry of the sidebar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Actor       *rbac.Actor
	Nav         []NavItem
	Data        any
}

// NewEngine parses templates at build-time. A nil table selects rbac.Default.
func NewEngine(table *rbac.Table, logger *slog.Logger) (*Engine, error) {
	if table == nil {
		table = rbac.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"can": func(actor *rbac.Actor, perm string) bool {
			return table.HasPermission(actor, rbac.Permission(perm))
		},
		"lines": func(items []string) string {
			return strings.Join(items, "\n")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, table: table, logger: logger}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.render(w, http.StatusOK, name, data)
}

// RenderPage fills TemplateData from the request (session flash, CSRF token, actor and
// navigation) and writes the page with status.
func (e *Engine) RenderPage(w http.ResponseWriter, r *http.Request, csrf *shared.CSRFManager, status int, name, title string, data any) {
	if e == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	actor := rbac.ActorFromContext(r.Context())
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   csrf.EnsureToken(sess),
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Actor:       actor,
		Nav:         Navigation(e.table, actor, r.URL.Path),
		Data:        data,
	}
	if err := e.render(w, status, name, viewData); err != nil {
		e.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

func (e *Engine) render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Navigation lists the sections actor may open, marking the one containing path.
func Navigation(table *rbac.Table, actor *rbac.Actor, path string) []NavItem {
	if actor == nil {
		return nil
	}
	items := []struct {
		label string
		href  string
		perms []rbac.Permission
	}{
		{label: "Dashboard", href: "/"},
		{label: "News", href: "/news", perms: []rbac.Permission{rbac.PermNewsView}},
		{label: "Team", href: "/team", perms: []rbac.Permission{rbac.PermUsersViewAll, rbac.PermUsersViewOwn}},
		{label: "Permissions", href: "/permissions", perms: []rbac.Permission{rbac.PermUsersViewAll}},
	}
	nav := make([]NavItem, 0, len(items))
	for _, item := range items {
		if len(item.perms) > 0 && !table.HasAny(actor, item.perms...) {
			continue
		}
		active := path == item.href || (item.href != "/" && strings.HasPrefix(path, item.href+"/"))
		nav = append(nav, NavItem{Label: item.label, Href: item.href, Active: active})
	}
	return nav
}
