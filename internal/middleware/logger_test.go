package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// contactAPIRouter mimics the contact routes behind the request logger.
func contactAPIRouter(log *slog.Logger, requestID gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(requestID, Logger(log, "/health"))

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/api/v1/contacts", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
	r.GET("/api/v1/contacts/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.String(http.StatusNotFound, "contact not found")
			return
		}
		c.String(http.StatusOK, c.Param("id"))
	})
	r.POST("/api/v1/contacts/search", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
		c.String(http.StatusServiceUnavailable, "database unavailable")
	})
	return r
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		method    string
		path      string
		wantLevel string
	}{
		{http.MethodGet, "/api/v1/contacts/3f2c", "level=INFO"},
		{http.MethodPost, "/api/v1/contacts", "level=INFO"},
		{http.MethodGet, "/api/v1/contacts/missing", "level=WARN"},
		{http.MethodPost, "/api/v1/contacts/search", "level=ERROR"},
		{http.MethodGet, "/health", "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var buf bytes.Buffer
			r := contactAPIRouter(newTestLogger(&buf), RequestID())
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("expected %s, got:\n%s", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	r := contactAPIRouter(newTestLogger(&buf), RequestID())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/contacts/3f2c", nil))

	out := buf.String()
	for _, field := range []string{
		"msg=request",
		"method=GET",
		"path=/api/v1/contacts/3f2c",
		"route=/api/v1/contacts/:id",
		"status=200",
		"bytes=4",
		"latency=",
		"client_ip=",
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected %q in:\n%s", field, out)
		}
	}
	if strings.Contains(out, "errors=") {
		t.Errorf("unexpected errors attr:\n%s", out)
	}
}

func TestLogger_RecordsContextErrors(t *testing.T) {
	var buf bytes.Buffer
	r := contactAPIRouter(newTestLogger(&buf), RequestID())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/contacts/search", nil))

	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected the recorded cause in the log, got:\n%s", buf.String())
	}
}

func TestLogger_QuietPathHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	info := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	r := contactAPIRouter(info, RequestID())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Errorf("expected no output for a healthy check, got:\n%s", buf.String())
	}
}

func TestLogger_NilUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newTestLogger(&buf))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := contactAPIRouter(nil, RequestID())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/contacts", nil))

	if !strings.Contains(buf.String(), "status=201") {
		t.Errorf("expected the default logger to be used, got:\n%s", buf.String())
	}
}

func TestLogger_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&buf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	defer log.Close()

	r := contactAPIRouter(log.Logger, RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/3f2c", nil)
	req.Header.Set(requestIDHeader, "edge-5e1d")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "edge-5e1d") {
		t.Errorf("expected request_id edge-5e1d in:\n%s", buf.String())
	}
}
