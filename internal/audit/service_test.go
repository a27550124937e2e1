package audit

import (
	"context"
	"testing"
	"time"

	"github.com/ptavares/socialspaces/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertEnd(t *testing.T, repo *MemoryEventRepository, cid uint64, method, user string, status int, at time.Time) {
	t.Helper()
	path := "/spaces"
	event := &model.AuditEvent{
		CorrelationID: cid,
		EventType:     EventTypeRequestEnd,
		Method:        &method,
		Path:          &path,
		Status:        &status,
		CreatedAt:     at,
	}
	if user != "" {
		event.UserID = &user
	}
	require.NoError(t, repo.Insert(context.Background(), event))
}

func TestAllLogsEmptyStore(t *testing.T) {
	service := NewService(NewMemoryEventRepository())

	logs, err := service.AllLogs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestListLogsMethodFilter(t *testing.T) {
	now := time.Now()
	repo := NewMemoryEventRepository()
	insertEnd(t, repo, 1, "GET", "alice", 200, now)
	insertEnd(t, repo, 2, "POST", "alice", 201, now)

	service := NewService(repo)

	page, err := service.ListLogs(context.Background(), ListOptions{Limit: 100, Method: "get"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, uint64(1), page.Logs[0].ID)
	assert.Equal(t, int64(1), page.Total)

	// an unrecognized verb is dropped, not applied and not rejected
	page, err = service.ListLogs(context.Background(), ListOptions{Limit: 100, Method: "FETCH"})
	require.NoError(t, err)
	assert.Len(t, page.Logs, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestListLogsUserFilter(t *testing.T) {
	now := time.Now()
	repo := NewMemoryEventRepository()
	insertEnd(t, repo, 1, "GET", "alice", 200, now)
	insertEnd(t, repo, 2, "GET", "bob", 200, now)
	insertEnd(t, repo, 3, "GET", "", 200, now)

	service := NewService(repo)

	page, err := service.ListLogs(context.Background(), ListOptions{Limit: 100, UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, uint64(2), page.Logs[0].ID)
}

func TestListLogsRejectsInvertedDateRange(t *testing.T) {
	service := NewService(NewMemoryEventRepository())

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := service.ListLogs(context.Background(), ListOptions{
		Limit:     100,
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, ErrStartAfterEnd)
}

func TestListLogsDateRange(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryEventRepository()
	insertEnd(t, repo, 1, "GET", "alice", 200, base.Add(-48*time.Hour))
	insertEnd(t, repo, 2, "GET", "alice", 200, base)
	insertEnd(t, repo, 3, "GET", "alice", 200, base.Add(48*time.Hour))

	service := NewService(repo)

	start := base.Add(-time.Hour)
	end := base.Add(time.Hour)
	page, err := service.ListLogs(context.Background(), ListOptions{
		Limit:     100,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, uint64(2), page.Logs[0].ID)
}

// TestListLogsTotalBeforePagination checks that Total counts every matching
// row, not just the returned page, and that pages come back most recent
// first.
func TestListLogsTotalBeforePagination(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryEventRepository()
	for i := 1; i <= 5; i++ {
		insertEnd(t, repo, uint64(i), "GET", "alice", 200, base.Add(time.Duration(i)*time.Minute))
	}

	service := NewService(repo)

	page, err := service.ListLogs(context.Background(), ListOptions{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Logs, 2)
	assert.Equal(t, uint64(5), page.Logs[0].ID)
	assert.Equal(t, uint64(4), page.Logs[1].ID)

	page, err = service.ListLogs(context.Background(), ListOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, uint64(1), page.Logs[0].ID)
}

func TestSummaryEmptyStore(t *testing.T) {
	service := NewService(NewMemoryEventRepository())

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalRequests)
	assert.NotNil(t, summary.RequestsByMethod)
	assert.Empty(t, summary.RequestsByMethod)
	assert.Equal(t, float64(0), summary.ErrorRate)
}

func TestSummaryAggregates(t *testing.T) {
	now := time.Now()
	repo := NewMemoryEventRepository()
	insertEnd(t, repo, 1, "GET", "alice", 200, now)
	insertEnd(t, repo, 2, "GET", "alice", 200, now)
	insertEnd(t, repo, 3, "POST", "alice", 201, now)
	insertEnd(t, repo, 4, "POST", "alice", 500, now)

	service := NewService(repo)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalRequests)
	assert.Equal(t, int64(2), summary.RequestsByMethod["GET"])
	assert.Equal(t, int64(2), summary.RequestsByMethod["POST"])
	assert.InDelta(t, 25.0, summary.ErrorRate, 1e-9)
}

// Summary and listings only ever see END rows; START and AUTH_INFO rows for
// requests that never completed are invisible to the read side.
func TestQueriesIgnoreNonEndEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	recorder := NewRecorder(repo)
	recorder.RecordStart(ctx, 1, "GET", "/spaces", "")
	recorder.RecordAuthenticated(ctx, 1, "alice")

	service := NewService(repo)

	logs, err := service.AllLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)

	summary, err := service.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalRequests)
}
