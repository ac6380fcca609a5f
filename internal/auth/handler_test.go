package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
	_ "github.com/odyssey-erp/odyssey-admin/testing"
)

type authFixture struct {
	handler  *auth.Handler
	service  *auth.Service
	sessions *shared.SessionManager
	repo     *store.Memory[users.User]
	logger   *slog.Logger
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := store.NewMemory(users.User{ID: "1", Name: "Super Administrator", Username: "admin", PasswordHash: string(hashed), Role: rbac.RoleSuperAdmin})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	sessionManager := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", time.Hour, false)
	templates, err := view.NewEngine(nil, logger)
	require.NoError(t, err)
	service := auth.NewService(users.NewService(repo, nil))
	return &authFixture{
		handler:  auth.NewHandler(logger, service, templates, sessionManager, shared.NewCSRFManager("csrfsecret")),
		service:  service,
		sessions: sessionManager,
		repo:     repo,
		logger:   logger,
	}
}

// serve runs one request through session load and commit, the way the app middleware does.
// The session is committed before the first header write so its cookie reaches the response.
func (fx *authFixture) serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := fx.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	res := httptest.NewRecorder()
	cw := &committingWriter{ResponseWriter: res, commit: func(w http.ResponseWriter) error {
		return fx.sessions.Commit(ctx, w, sess)
	}}
	h.ServeHTTP(cw, req.WithContext(ctx))
	if !cw.committed {
		cw.WriteHeader(http.StatusOK)
	}
	require.NoError(t, cw.err)
	return res, sess
}

type committingWriter struct {
	http.ResponseWriter
	commit    func(http.ResponseWriter) error
	committed bool
	err       error
}

func (w *committingWriter) WriteHeader(status int) {
	if !w.committed {
		w.committed = true
		w.err = w.commit(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *committingWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (fx *authFixture) router() http.Handler {
	r := http.NewServeMux()
	r.HandleFunc("GET /auth/login", fx.handler.ShowLoginForTest)
	r.HandleFunc("POST /auth/login", fx.handler.HandleLoginForTest)
	r.HandleFunc("POST /auth/logout", fx.handler.HandleLogoutForTest)
	return r
}

func loginRequest(cookie *http.Cookie, username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func sessionCookie(res *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range res.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	fx := newAuthFixture(t)

	res, sess := fx.serve(t, fx.router(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
	assert.NotNil(t, sessionCookie(res, fx.sessions.CookieName()))
}

func TestLoginInvalidCredentials(t *testing.T) {
	fx := newAuthFixture(t)
	getRes, _ := fx.serve(t, fx.router(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	cookie := sessionCookie(getRes, fx.sessions.CookieName())
	require.NotNil(t, cookie)

	res, sess := fx.serve(t, fx.router(), loginRequest(cookie, "admin", "wrongpass"))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid username or password")
	assert.Empty(t, sess.User())

	res, _ = fx.serve(t, fx.router(), loginRequest(cookie, "nobody", "admin123"))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid username or password")

	res, _ = fx.serve(t, fx.router(), loginRequest(cookie, "", ""))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Username and password are required")
}

func TestLoginRenewsSession(t *testing.T) {
	fx := newAuthFixture(t)
	getRes, primed := fx.serve(t, fx.router(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	cookie := sessionCookie(getRes, fx.sessions.CookieName())
	require.NotNil(t, cookie)
	oldToken := primed.Get(shared.CSRFSessionKey)

	res, sess := fx.serve(t, fx.router(), loginRequest(cookie, "admin", "admin123"))
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))
	assert.Equal(t, "1", sess.User())
	assert.NotEqual(t, cookie.Value, sess.ID)
	assert.NotEqual(t, oldToken, sess.Get(shared.CSRFSessionKey))

	// The pre-login id is gone.
	stale := httptest.NewRequest(http.MethodGet, "/", nil)
	stale.AddCookie(cookie)
	reloaded, err := fx.sessions.Load(context.Background(), stale)
	require.NoError(t, err)
	assert.Empty(t, reloaded.User())
	assert.NotEqual(t, cookie.Value, reloaded.ID)
}

func TestLogout(t *testing.T) {
	fx := newAuthFixture(t)
	getRes, _ := fx.serve(t, fx.router(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	loginRes, _ := fx.serve(t, fx.router(), loginRequest(sessionCookie(getRes, fx.sessions.CookieName()), "admin", "admin123"))
	cookie := sessionCookie(loginRes, fx.sessions.CookieName())
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	res, _ := fx.serve(t, fx.router(), req)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, rbac.LoginPath, res.Header().Get("Location"))
	cleared := sessionCookie(res, fx.sessions.CookieName())
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestIdentify(t *testing.T) {
	fx := newAuthFixture(t)
	var seen *rbac.Actor
	inspect := auth.Identify(fx.service, fx.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = rbac.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	getRes, _ := fx.serve(t, fx.router(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	loginRes, _ := fx.serve(t, fx.router(), loginRequest(sessionCookie(getRes, fx.sessions.CookieName()), "admin", "admin123"))
	cookie := sessionCookie(loginRes, fx.sessions.CookieName())
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	fx.serve(t, inspect, req)
	require.NotNil(t, seen)
	assert.Equal(t, "1", seen.ID)
	assert.Equal(t, rbac.RoleSuperAdmin, seen.Role)

	require.NoError(t, fx.repo.Remove(context.Background(), "1"))
	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, sess := fx.serve(t, inspect, req)
	assert.Nil(t, seen)
	assert.Empty(t, sess.User())
}

func TestAuthenticateUsesPasswordAsTyped(t *testing.T) {
	fx := newAuthFixture(t)
	admin, err := fx.repo.Get(context.Background(), "1")
	require.NoError(t, err)
	members := users.NewService(fx.repo, nil)
	_, err = members.Create(context.Background(), admin.Actor(), users.Input{
		Name:     "Spacey",
		Email:    "spacey@company.com",
		Username: "spacey",
		Password: "  secret pass  ",
	})
	require.NoError(t, err)

	user, err := fx.service.Authenticate(context.Background(), "spacey", "  secret pass  ")
	require.NoError(t, err)
	assert.Equal(t, "spacey", user.Username)

	_, err = fx.service.Authenticate(context.Background(), "spacey", "secret pass")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestIdentifyAnonymous(t *testing.T) {
	fx := newAuthFixture(t)
	actor, err := fx.service.Identify(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, actor)
}
