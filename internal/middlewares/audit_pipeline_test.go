package middlewares

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/audit"
	"github.com/ptavares/socialspaces/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureRepo records every inserted event in order so tests can assert on
// the exact lifecycle written for a request.
type captureRepo struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (r *captureRepo) Insert(ctx context.Context, event *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *captureRepo) MaxCorrelationID(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var maxID uint64
	for _, event := range r.events {
		if event.CorrelationID > maxID {
			maxID = event.CorrelationID
		}
	}
	return maxID, nil
}

func (r *captureRepo) FindEnded(ctx context.Context, filter audit.LogFilter, limit, offset int) ([]*model.AuditEvent, error) {
	return nil, nil
}

func (r *captureRepo) CountEnded(ctx context.Context, filter audit.LogFilter) (int64, error) {
	return 0, nil
}

func (r *captureRepo) CountEndedByMethod(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func (r *captureRepo) CountEndedErrors(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *captureRepo) recorded() []model.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditEvent(nil), r.events...)
}

func newAuditedApp(repo audit.EventRepository) *fiber.App {
	recorder := audit.NewRecorder(repo)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Correlate(audit.NewAllocator(repo), recorder))
	app.Use(AuditInterceptor(recorder))
	return app
}

func TestPipelineRecordsStartAndEnd(t *testing.T) {
	repo := &captureRepo{}
	app := newAuditedApp(repo)
	app.Get("/things", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	events := repo.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventTypeRequestStart, events[0].EventType)
	assert.Equal(t, audit.EventTypeRequestEnd, events[1].EventType)
	assert.Equal(t, events[0].CorrelationID, events[1].CorrelationID)
	require.NotNil(t, events[1].Status)
	assert.Equal(t, fiber.StatusOK, *events[1].Status)
}

func TestPipelineRecordsAuthenticatedLifecycle(t *testing.T) {
	repo := &captureRepo{}
	app := newAuditedApp(repo)
	app.Use(func(c *fiber.Ctx) error {
		SetAuthenticatedUser(c, "alice")
		return c.Next()
	})
	app.Post("/things", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	events := repo.recorded()
	require.Len(t, events, 3)
	assert.Equal(t, audit.EventTypeRequestStart, events[0].EventType)
	assert.Equal(t, audit.EventTypeAuthInfo, events[1].EventType)
	assert.Equal(t, audit.EventTypeRequestEnd, events[2].EventType)
	require.NotNil(t, events[1].UserID)
	assert.Equal(t, "alice", *events[1].UserID)
	require.NotNil(t, events[2].UserID)
	assert.Equal(t, "alice", *events[2].UserID)
}

// An auth-stage denial is recorded exactly once, by the boundary hook in the
// correlation middleware, with no user attached.
func TestPipelineAuthDeniedRecordedOnce(t *testing.T) {
	repo := &captureRepo{}
	app := newAuditedApp(repo)
	app.Use(func(c *fiber.Ctx) error {
		MarkAuthDenied(c)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	events := repo.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventTypeRequestStart, events[0].EventType)
	assert.Equal(t, audit.EventTypeRequestEnd, events[1].EventType)
	require.NotNil(t, events[1].Status)
	assert.Equal(t, fiber.StatusUnauthorized, *events[1].Status)
	assert.Nil(t, events[1].UserID)
}

// A 403 produced by business logic carries no denial mark and is recorded
// like any other completion, user included.
func TestPipelineBusinessForbiddenRecordedNormally(t *testing.T) {
	repo := &captureRepo{}
	app := newAuditedApp(repo)
	app.Use(func(c *fiber.Ctx) error {
		SetAuthenticatedUser(c, "alice")
		return c.Next()
	})
	app.Get("/things", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "Not yours")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	events := repo.recorded()
	require.Len(t, events, 3)
	assert.Equal(t, audit.EventTypeRequestEnd, events[2].EventType)
	require.NotNil(t, events[2].Status)
	assert.Equal(t, fiber.StatusForbidden, *events[2].Status)
	require.NotNil(t, events[2].UserID)
	assert.Equal(t, "alice", *events[2].UserID)
}

func TestPipelineCorrelationIDsIncrease(t *testing.T) {
	repo := &captureRepo{}
	app := newAuditedApp(repo)
	app.Get("/things", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/things", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	events := repo.recorded()
	require.Len(t, events, 6)
	var starts []uint64
	for _, event := range events {
		if event.EventType == audit.EventTypeRequestStart {
			starts = append(starts, event.CorrelationID)
		}
	}
	assert.Equal(t, []uint64{1, 2, 3}, starts)
}

// When the allocator cannot reach the store the request fails outright
// rather than running unaudited.
func TestPipelineAllocatorFailureAborts(t *testing.T) {
	recorder := audit.NewRecorder(&failingRepo{})
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Correlate(audit.NewAllocator(&failingRepo{}), recorder))
	app.Get("/things", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

type failingRepo struct{ captureRepo }

func (r *failingRepo) MaxCorrelationID(ctx context.Context) (uint64, error) {
	return 0, assert.AnError
}
