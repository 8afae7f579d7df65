package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	return r
}

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := newRouter()
	r.GET("/api/v1/contacts/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/abc", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/contacts/:id", "200"))
	if val < 1 {
		t.Errorf("expected http_requests_total >= 1 for route pattern, got %f", val)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_DifferentStatusCodes(t *testing.T) {
	r := newRouter()
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		path   string
		status string
	}{
		{"/ok", "200"},
		{"/missing", "404"},
		{"/boom", "500"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.status, val)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if val < 1 {
		t.Errorf("expected unmatched route to be recorded as unknown, got %f", val)
	}
}

func TestObserveSearch(t *testing.T) {
	okBefore := testutil.ToFloat64(searchTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(searchTotal.WithLabelValues("error"))

	ObserveSearch(3, nil)
	ObserveSearch(0, errors.New("store down"))

	if got := testutil.ToFloat64(searchTotal.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok searches delta = %f; want 1", got)
	}
	if got := testutil.ToFloat64(searchTotal.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error searches delta = %f; want 1", got)
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	r := newRouter()
	r.GET("/metrics", Handler())
	ObserveSearch(1, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "kontakt_contact_search_total") {
		t.Error("expected exposition to contain kontakt_contact_search_total")
	}
}
