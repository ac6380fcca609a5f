package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
)

func testService(t *testing.T, seed ...User) (*Service, *store.Memory[User]) {
	t.Helper()
	repo := store.NewMemory(seed...)
	svc := NewService(repo, nil)
	svc.hashCost = bcrypt.MinCost
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

var (
	adminUser = User{ID: "a1", Name: "Admin", Username: "admin", Email: "admin@company.com", Role: rbac.RoleSuperAdmin}
	aliceUser = User{ID: "u1", Name: "Alice", Username: "alice", Email: "alice@company.com", Role: rbac.RoleUser}
	bobUser   = User{ID: "u2", Name: "Bob", Username: "bob", Email: "bob@company.com", Role: rbac.RoleUser}
)

func validInput(username string) Input {
	return Input{Name: "New Member", Email: username + "@company.com", Username: username, Password: "s3cret"}
}

func TestListFiltersByRole(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser, bobUser)
	ctx := context.Background()

	all, err := svc.List(ctx, adminUser.Actor())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := svc.List(ctx, aliceUser.Actor())
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "u1", own[0].ID)

	none, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetRespectsViewRule(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser, bobUser)
	ctx := context.Background()

	got, err := svc.Get(ctx, aliceUser.Actor(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = svc.Get(ctx, aliceUser.Actor(), "u2")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(ctx, adminUser.Actor(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreate(t *testing.T) {
	svc, repo := testService(t, adminUser, aliceUser)
	ctx := context.Background()

	_, err := svc.Create(ctx, aliceUser.Actor(), validInput("carol"))
	assert.ErrorIs(t, err, shared.ErrForbidden)

	in := validInput("carol")
	in.Role = rbac.RoleSuperAdmin
	in.Experiences = []Experience{{Company: "Acme", Position: "Engineer"}, {Duration: "2019"}}
	created, err := svc.Create(ctx, adminUser.Actor(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, rbac.RoleSuperAdmin, created.Role)
	require.Len(t, created.Experiences, 1)
	assert.NotEmpty(t, created.Experiences[0].ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret")))
	assert.Equal(t, 3, repo.Len())
}

func TestCreateDefaultsRole(t *testing.T) {
	svc, _ := testService(t, adminUser)
	created, err := svc.Create(context.Background(), adminUser.Actor(), validInput("dave"))
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleUser, created.Role)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser)
	ctx := context.Background()

	in := validInput("erin")
	in.Password = ""
	in.Email = "not-an-email"
	_, err := svc.Create(ctx, adminUser.Actor(), in)
	fields := shared.AsFieldErrors(err)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "email")

	_, err = svc.Create(ctx, adminUser.Actor(), validInput("ALICE"))
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateKeepsPasswordVerbatim(t *testing.T) {
	svc, _ := testService(t, adminUser)
	ctx := context.Background()

	in := validInput("frank")
	in.Password = "  secret pass  "
	created, err := svc.Create(ctx, adminUser.Actor(), in)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("  secret pass  ")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret pass")))

	in = validInput("gina")
	in.Password = "   "
	_, err = svc.Create(ctx, adminUser.Actor(), in)
	assert.Contains(t, shared.AsFieldErrors(err), "password")
}

func TestUpdateOwnProfile(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser, bobUser)
	ctx := context.Background()

	in := InputFrom(aliceUser)
	in.Name = "Alice Cooper"
	in.Role = rbac.RoleSuperAdmin
	updated, err := svc.Update(ctx, aliceUser.Actor(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, rbac.RoleUser, updated.Role, "members cannot promote themselves")

	_, err = svc.Update(ctx, aliceUser.Actor(), "u2", InputFrom(bobUser))
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateRoleAndPassword(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser)
	ctx := context.Background()

	in := InputFrom(aliceUser)
	in.Role = rbac.RoleSuperAdmin
	in.Password = "rotated"
	updated, err := svc.Update(ctx, adminUser.Actor(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleSuperAdmin, updated.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("rotated")))

	self := InputFrom(adminUser)
	self.Role = rbac.RoleUser
	updated, err = svc.Update(ctx, adminUser.Actor(), "a1", self)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleSuperAdmin, updated.Role)

	clash := InputFrom(aliceUser)
	clash.Username = "admin"
	_, err = svc.Update(ctx, adminUser.Actor(), "u1", clash)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestDelete(t *testing.T) {
	svc, repo := testService(t, adminUser, aliceUser, bobUser)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, adminUser.Actor(), "a1"), shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, aliceUser.Actor(), "u2"), shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, aliceUser.Actor(), "u1"), shared.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, adminUser.Actor(), "u2"))
	assert.Equal(t, 2, repo.Len())
	assert.ErrorIs(t, svc.Delete(ctx, adminUser.Actor(), "u2"), shared.ErrNotFound)
}

func TestFindByUsername(t *testing.T) {
	svc, _ := testService(t, adminUser, aliceUser)
	got, err := svc.FindByUsername(context.Background(), " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = svc.FindByUsername(context.Background(), "zed")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSeed(t *testing.T) {
	repo := store.NewMemory[User]()
	ctx := context.Background()

	assert.Error(t, Seed(ctx, repo, ""))
	require.NoError(t, Seed(ctx, repo, "admin123"))
	require.NoError(t, Seed(ctx, repo, "other"))
	assert.Equal(t, 1, repo.Len())

	admin, err := repo.Get(ctx, AdminID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleSuperAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "A", User{Name: " alice"}.Initial())
	assert.Equal(t, "?", User{}.Initial())
}
