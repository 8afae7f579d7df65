package contact

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestContactModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(&ContactHandler{}).RegisterRoutes(r.Group("/api/v1"))

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/contacts"},
		{http.MethodPost, "/api/v1/contacts/search"},
		{http.MethodGet, "/api/v1/contacts/:id"},
		{http.MethodPut, "/api/v1/contacts/:id"},
		{http.MethodDelete, "/api/v1/contacts/:id"},
	}

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+":"+ri.Path] = true
	}

	for _, exp := range expected {
		if !registered[exp.method+":"+exp.path] {
			t.Errorf("expected route %s %s to be registered", exp.method, exp.path)
		}
	}
	if len(r.Routes()) != len(expected) {
		t.Errorf("expected %d routes, got %d", len(expected), len(r.Routes()))
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
