package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type decisionLog struct {
	allowed map[string]int
	denied  map[string]int
}

func (d *decisionLog) ObserveAuthz(permission string, allowed bool) {
	if allowed {
		d.allowed[permission]++
		return
	}
	d.denied[permission]++
}

func serveGuarded(guard func(http.Handler) http.Handler, method string, actor *Actor) *httptest.ResponseRecorder {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(method, "/team", nil)
	if actor != nil {
		req = req.WithContext(ContextWithActor(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	guard(ok).ServeHTTP(rec, req)
	return rec
}

func TestRequireAny(t *testing.T) {
	log := &decisionLog{allowed: map[string]int{}, denied: map[string]int{}}
	m := Middleware{Recorder: log}

	rec := serveGuarded(m.RequireAny(PermUsersViewAll, PermUsersViewOwn), http.MethodGet, standardU1)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveGuarded(m.RequireAny(PermUsersDelete), http.MethodGet, standardU1)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, log.denied[string(PermUsersDelete)])
}

func TestRequireAll(t *testing.T) {
	m := Middleware{Table: Default()}

	rec := serveGuarded(m.RequireAll(PermNewsView, PermNewsEdit), http.MethodPost, standardU1)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serveGuarded(m.RequireAll(PermNewsView, PermNewsEdit), http.MethodPost, elevatedA1)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireWithoutActor(t *testing.T) {
	m := Middleware{}

	rec := serveGuarded(m.RequireAny(PermNewsView), http.MethodGet, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	rec = serveGuarded(m.RequireAny(PermNewsView), http.MethodPost, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveGuarded(m.RequireActor(), http.MethodGet, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serveGuarded(m.RequireActor(), http.MethodGet, standardU1)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireNothing(t *testing.T) {
	rec := serveGuarded(Middleware{}.RequireAny(), http.MethodGet, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
