package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/sqlite"
)

var testNow = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

type failingSource struct{ err error }

func (f failingSource) QueryCompletionDates(context.Context, string, string) ([]models.CompletionEvent, error) {
	return nil, f.err
}

func (f failingSource) QueryFocusSessions(context.Context, string, models.FocusMode, time.Time) ([]models.FocusSession, error) {
	return nil, f.err
}

func (f failingSource) QueryHabitCount(context.Context, string) (int, error) {
	return 0, f.err
}

func seededRouter(t *testing.T) *Router {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	store.Quiet = true
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	for _, h := range []models.Habit{
		{ID: "h1", OwnerID: "alice", Name: "Read", CreatedAt: testNow},
		{ID: "h2", OwnerID: "alice", Name: "Run", CreatedAt: testNow},
		{ID: "h3", OwnerID: "bob", Name: "Swim", CreatedAt: testNow},
	} {
		require.NoError(t, store.AddHabit(h))
	}
	for i, d := range []string{"2026-10-16", "2026-10-15", "2026-10-14", "2026-10-10"} {
		_, err := store.MarkCompletion(models.CompletionEvent{ID: "c" + string(rune('a'+i)), OwnerID: "alice", HabitID: "h1", Day: d})
		require.NoError(t, err)
	}
	_, err := store.MarkCompletion(models.CompletionEvent{ID: "cb", OwnerID: "bob", HabitID: "h3", Day: "2026-10-16"})
	require.NoError(t, err)
	require.NoError(t, store.AddFocusSession(models.FocusSession{
		ID: "s1", OwnerID: "alice", DurationMinutes: 25, Mode: models.FocusModeWork, CompletedAt: testNow.Add(-time.Hour),
	}))

	return NewRouter(stats.NewService(store), Options{Location: time.UTC, Now: func() time.Time { return testNow }})
}

func get(t *testing.T, r *Router, path, owner string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if owner != "" {
		req.Header.Set(constants.OwnerHeader, owner)
	}
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, into))
}

func TestHealthAndMetrics(t *testing.T) {
	r := NewRouter(stats.NewService(failingSource{}), Options{})

	w := get(t, r, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = get(t, r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestStatsRequireOwner(t *testing.T) {
	r := seededRouter(t)
	for _, path := range []string{"/api/v1/stats/streak", "/api/v1/stats/chart", "/api/v1/stats/summary"} {
		w := get(t, r, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrorCodeUnauthorized, resp.Error.Code)
		assert.NotEmpty(t, resp.RequestID)
	}
}

func TestStreakEndpoint(t *testing.T) {
	r := seededRouter(t)
	w := get(t, r, "/api/v1/stats/streak", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.StreakSummary
	decodeData(t, w, &got)
	assert.Equal(t, models.StreakSummary{CurrentStreak: 3, MaxStreak: 3}, got)

	w = get(t, r, "/api/v1/stats/streak", "carol")
	decodeData(t, w, &got)
	assert.Equal(t, models.StreakSummary{}, got)
}

func TestHeatmapEndpoint(t *testing.T) {
	r := seededRouter(t)
	w := get(t, r, "/api/v1/stats/heatmap?window=6", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cells []models.HeatmapCell
	decodeData(t, w, &cells)
	require.Len(t, cells, 7)
	assert.Equal(t, "2026-10-10", cells[0].Date)
	assert.Equal(t, 1, cells[0].Count)
	assert.Equal(t, 1, cells[6].Count, "bob's completion must not be counted")

	for _, bad := range []string{"-1", "abc", "99999"} {
		w = get(t, r, "/api/v1/stats/heatmap?window="+bad, "alice")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestMonthlyEndpoint(t *testing.T) {
	r := seededRouter(t)
	w := get(t, r, "/api/v1/stats/monthly", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.MonthlyRate
	decodeData(t, w, &got)
	// 4 completions against 2 habits x 16 days
	assert.Equal(t, models.MonthlyRate{Completed: 4, Total: 32, Rate: 13}, got)
}

func TestChartEndpoint(t *testing.T) {
	r := seededRouter(t)

	w := get(t, r, "/api/v1/stats/chart?period=day", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var points []models.ChartPoint
	decodeData(t, w, &points)
	assert.Equal(t, []models.ChartPoint{{Label: "14:00", Value: 25}}, points)

	w = get(t, r, "/api/v1/stats/chart", "bob")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &points)
	require.Len(t, points, 7, "empty week chart falls back to the template")
	assert.Equal(t, "Mon", points[0].Label)

	w = get(t, r, "/api/v1/stats/chart?period=decade", "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimezoneParameter(t *testing.T) {
	r := seededRouter(t)
	w := get(t, r, "/api/v1/stats/chart?period=day&tz=Asia/Tokyo", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var points []models.ChartPoint
	decodeData(t, w, &points)
	// 15:00 UTC is already the next day in Tokyo, so today's bucket is empty
	assert.Len(t, points, 24)

	w = get(t, r, "/api/v1/stats/streak?tz=Mars/Olympus", "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	r := seededRouter(t)
	w := get(t, r, "/api/v1/stats/summary?window=30&period=year", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sum stats.Summary
	decodeData(t, w, &sum)
	assert.Equal(t, "alice", sum.OwnerID)
	assert.Len(t, sum.Heatmap, 31)
	assert.Equal(t, []models.ChartPoint{{Label: "Q4", Value: 25}}, sum.Chart)
}

func TestQueryErrorsMapToBadGateway(t *testing.T) {
	r := NewRouter(stats.NewService(failingSource{err: errors.New("connection refused")}), Options{Now: func() time.Time { return testNow }})
	for _, path := range []string{"/api/v1/stats/streak", "/api/v1/stats/heatmap", "/api/v1/stats/monthly", "/api/v1/stats/chart", "/api/v1/stats/summary"} {
		w := get(t, r, path, "alice")
		assert.Equal(t, http.StatusBadGateway, w.Code, path)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrorCodeQueryFailed, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "connection refused")
	}
}

func TestDeadlineMapsToGatewayTimeout(t *testing.T) {
	r := NewRouter(stats.NewService(failingSource{err: context.DeadlineExceeded}), Options{Now: func() time.Time { return testNow }})
	w := get(t, r, "/api/v1/stats/streak", "alice")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
