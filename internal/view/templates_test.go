package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(nil, nil)
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLogin(t *testing.T) {
	engine, err := NewEngine(nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{Title: "Sign in", CSRFToken: "tok", Data: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf_token" value="tok"`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine(nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, engine.Render(rec, "pages/missing.html", TemplateData{}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNavigationFollowsPermissions(t *testing.T) {
	table := rbac.Default()

	assert.Nil(t, Navigation(table, nil, "/"))

	standard := Navigation(table, &rbac.Actor{ID: "u1", Role: rbac.RoleUser}, "/team/u1")
	assert.Equal(t, []NavItem{
		{Label: "Dashboard", Href: "/"},
		{Label: "News", Href: "/news"},
		{Label: "Team", Href: "/team", Active: true},
	}, standard)

	admin := Navigation(table, &rbac.Actor{ID: "1", Role: rbac.RoleSuperAdmin}, "/")
	require.Len(t, admin, 4)
	assert.True(t, admin[0].Active)
	assert.Equal(t, "/permissions", admin[3].Href)
}
