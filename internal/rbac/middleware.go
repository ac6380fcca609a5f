package rbac

import (
	"log/slog"
	"net/http"
)

// LoginPath is where unauthenticated browser requests are sent.
const LoginPath = "/auth/login"

// DecisionRecorder receives the outcome of every guarded request.
type DecisionRecorder interface {
	ObserveAuthz(permission string, allowed bool)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Table    *Table
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// RequireActor ensures somebody is signed in.
func (m Middleware) RequireActor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ActorFromContext(r.Context()) == nil {
				m.unauthenticated(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the current actor has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, m.table().HasAny)
}

// RequireAll ensures the current actor has all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, m.table().HasAll)
}

func (m Middleware) require(perms []Permission, check func(*Actor, ...Permission) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor := ActorFromContext(r.Context())
			if actor == nil {
				m.unauthenticated(w, r)
				return
			}
			allowed := check(actor, perms...)
			m.record(perms, allowed)
			if !allowed {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied", slog.String("actor", actor.ID), slog.String("role", string(actor.Role)), slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

func (m Middleware) record(perms []Permission, allowed bool) {
	if m.Recorder == nil {
		return
	}
	for _, p := range perms {
		m.Recorder.ObserveAuthz(string(p), allowed)
	}
}

func (m Middleware) table() *Table {
	if m.Table == nil {
		return defaultTable
	}
	return m.Table
}
