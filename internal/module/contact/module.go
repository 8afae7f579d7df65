package contact

import "github.com/gin-gonic/gin"

// ContactModule implements the app.Module interface for the contact domain.
type ContactModule struct {
	handler *ContactHandler
}

// NewModule creates a new ContactModule with the given handler.
// Panics if h is nil.
func NewModule(h *ContactHandler) *ContactModule {
	if h == nil {
		panic("contact.NewModule: handler must not be nil")
	}
	return &ContactModule{handler: h}
}

// RegisterRoutes registers contact API routes.
func (m *ContactModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/contacts", m.handler.Create)
	api.POST("/contacts/search", m.handler.Search)
	api.GET("/contacts/:id", m.handler.Get)
	api.PUT("/contacts/:id", m.handler.Update)
	api.DELETE("/contacts/:id", m.handler.Delete)
}
