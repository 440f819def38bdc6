package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExposure(t *testing.T) {
	IncStatsRequest("streak")
	ObserveQuery("habit count", time.Now().Add(-20*time.Millisecond), nil)
	ObserveQuery("focus sessions", time.Now(), errors.New("connection refused"))
	AddFocusMinutes("work", 25)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"habitmaster_stats_requests_total",
		"habitmaster_query_errors_total",
		"habitmaster_query_duration_seconds",
		"habitmaster_focus_minutes_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}

func TestObserveQueryCountsOnlyFailures(t *testing.T) {
	before := testutil.ToFloat64(QueryErrors.WithLabelValues("completion dates"))
	ObserveQuery("completion dates", time.Now(), nil)
	ObserveQuery("completion dates", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(QueryErrors.WithLabelValues("completion dates"))
	if after-before != 1 {
		t.Errorf("query errors delta = %v, want 1", after-before)
	}
}

func TestAddFocusMinutesIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(FocusMinutes.WithLabelValues("break"))
	AddFocusMinutes("break", 0)
	AddFocusMinutes("break", -5)
	AddFocusMinutes("break", 5)
	if got := testutil.ToFloat64(FocusMinutes.WithLabelValues("break")) - before; got != 5 {
		t.Errorf("focus minutes delta = %v, want 5", got)
	}
}
