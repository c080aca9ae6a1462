package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// PreviewService defines the interface for preview session operations
type PreviewService interface {
	Open(ctx context.Context, ownerID, formID string) (*models.PreviewSnapshot, error)
	Snapshot(ownerID, sessionID string) (*models.PreviewSnapshot, error)
	SetValue(ctx context.Context, ownerID, sessionID, fieldID string, value interface{}) (*models.PreviewSnapshot, error)
	ValidateAll(ownerID, sessionID string) (*models.PreviewSnapshot, error)
	Close(ownerID, sessionID string) error
}

// PreviewHandler handles preview session endpoints
type PreviewHandler struct {
	svc PreviewService
}

// NewPreviewHandler creates a new PreviewHandler
func NewPreviewHandler(svc PreviewService) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

// SetValueRequest carries one entered value
type SetValueRequest struct {
	Value interface{} `json:"value"`
}

// Open handles POST /api/forms/:formId/preview
func (h *PreviewHandler) Open(c *gin.Context) {
	snap, err := h.svc.Open(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, snap)
}

// Get handles GET /api/preview/:sessionId
func (h *PreviewHandler) Get(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.svc.Snapshot(GetOwnerFromContext(c), c.Param(constants.ParamSessionID))
	})
}

// SetValue handles PUT /api/preview/:sessionId/values/:fieldId
func (h *PreviewHandler) SetValue(c *gin.Context) {
	var req SetValueRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.svc.SetValue(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamSessionID), c.Param(constants.ParamFieldID), req.Value)
	})
}

// Validate handles POST /api/preview/:sessionId/validate
func (h *PreviewHandler) Validate(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.svc.ValidateAll(GetOwnerFromContext(c), c.Param(constants.ParamSessionID))
	})
}

// Close handles DELETE /api/preview/:sessionId
func (h *PreviewHandler) Close(c *gin.Context) {
	HandleDelete(c, func() error {
		return h.svc.Close(GetOwnerFromContext(c), c.Param(constants.ParamSessionID))
	})
}
