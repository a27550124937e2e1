package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/middlewares"
	"github.com/ptavares/socialspaces/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePermissionRepository serves permissions from a static map keyed by
// space id and user id.
type fakePermissionRepository struct {
	perms map[uint64]map[string]string
}

func (r *fakePermissionRepository) Find(ctx context.Context, spaceID uint64, userID string) (*model.Permission, error) {
	if perms, ok := r.perms[spaceID][userID]; ok {
		return &model.Permission{SpaceID: spaceID, UserID: userID, Perms: perms}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePermissionRepository) Grant(ctx context.Context, permission *model.Permission) error {
	return nil
}

func (r *fakePermissionRepository) GrantOnAllSpaces(ctx context.Context, userID string, perms string) error {
	return nil
}

func (r *fakePermissionRepository) ListByUser(ctx context.Context, userID string) ([]*model.Permission, error) {
	return nil, nil
}

func (r *fakePermissionRepository) DeleteBySpace(ctx context.Context, spaceID uint64) error {
	return nil
}

func newGuardedApp(repo PermissionRepository, user string, method, permission string) *fiber.App {
	app := fiber.New()
	if user != "" {
		app.Use(func(c *fiber.Ctx) error {
			middlewares.SetAuthenticatedUser(c, user)
			return c.Next()
		})
	}
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	guard := RequirePermission(repo, method, permission)
	app.All("/spaces/:spaceId/messages", guard, handler)
	return app
}

func guardStatus(t *testing.T, app *fiber.App, method, target string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

// The permission check is substring containment: a stored "rwd" satisfies
// each single flag, a stored "r" does not satisfy "w".
func TestRequirePermissionSubstring(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{
		1: {"alice": "rwd", "bob": "r"},
	}}

	for _, flag := range []string{"r", "w", "d"} {
		app := newGuardedApp(repo, "alice", fiber.MethodGet, flag)
		assert.Equalf(t, fiber.StatusOK, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"),
			"rwd should satisfy %q", flag)
	}

	app := newGuardedApp(repo, "bob", fiber.MethodGet, "w")
	assert.Equal(t, fiber.StatusForbidden, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"))
}

func TestRequirePermissionCaseInsensitive(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{
		1: {"alice": "RWD"},
	}}

	app := newGuardedApp(repo, "alice", fiber.MethodGet, "r")
	assert.Equal(t, fiber.StatusOK, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"))
}

func TestRequirePermissionMethodMismatch(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{
		1: {"alice": "rwd"},
	}}

	app := newGuardedApp(repo, "alice", fiber.MethodPost, "w")
	assert.Equal(t, fiber.StatusForbidden, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"))
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{}}

	app := newGuardedApp(repo, "", fiber.MethodGet, "r")
	assert.Equal(t, fiber.StatusUnauthorized, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"))
}

func TestRequirePermissionNoGrant(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{}}

	app := newGuardedApp(repo, "alice", fiber.MethodGet, "r")
	assert.Equal(t, fiber.StatusForbidden, guardStatus(t, app, fiber.MethodGet, "/spaces/1/messages"))
}

func TestRequirePermissionBadSpaceID(t *testing.T) {
	repo := &fakePermissionRepository{perms: map[uint64]map[string]string{
		1: {"alice": "rwd"},
	}}

	app := newGuardedApp(repo, "alice", fiber.MethodGet, "r")
	assert.Equal(t, fiber.StatusForbidden, guardStatus(t, app, fiber.MethodGet, "/spaces/nope/messages"))
}
