package contact

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/pkg"
)

// ContactHandler handles REST API requests for the contact resource.
type ContactHandler struct {
	svc domain.ContactService
}

// NewContactHandler creates a new ContactHandler with the given service.
func NewContactHandler(svc domain.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// Create handles POST /api/v1/contacts.
func (h *ContactHandler) Create(c *gin.Context) {
	var req domain.SaveContactPayload
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	contact, err := h.svc.CreateContact(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.Header("Location", c.Request.URL.Path+"/"+contact.ID.String())
	pkg.Created(c, contact)
}

// Get handles GET /api/v1/contacts/:id.
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.svc.GetContact(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, contact)
}

// Update handles PUT /api/v1/contacts/:id.
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.SaveContactPayload
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	contact, err := h.svc.UpdateContact(c.Request.Context(), id, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, contact)
}

// Delete handles DELETE /api/v1/contacts/:id. The response carries the
// contact as it was before removal.
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.svc.DeleteContact(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, contact)
}

// Search handles POST /api/v1/contacts/search. An empty body searches
// without criteria.
func (h *ContactHandler) Search(c *gin.Context) {
	var req domain.SearchContactsRequest
	if !pkg.BindOptionalJSON(c, &req) {
		return
	}

	result, err := h.svc.SearchContacts(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// parseID reads the :id path parameter. On failure it writes a validation
// error response and returns false.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "invalid contact id", err))
		return uuid.Nil, false
	}
	return id, true
}
