package auth

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Identify attaches the signed-in actor to the request context. It must run after the
// session middleware.
func Identify(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			userID := sess.User()
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := service.Identify(r.Context(), userID)
			if err != nil {
				logger.Error("identify actor", slog.String("user_id", userID), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if actor == nil {
				logger.Info("session user no longer exists", slog.String("user_id", userID))
				sess.SetUser("")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithActor(r.Context(), actor)))
		})
	}
}
