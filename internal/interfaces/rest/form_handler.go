package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/internal/application/services"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
)

// FormHandler serves the builder endpoints: forms, fields and derived
// field configuration
type FormHandler struct {
	forms   *services.FormService
	derived *services.DerivedFieldService
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(svcMgr *services.ServiceManager) *FormHandler {
	return &FormHandler{
		forms:   svcMgr.Forms,
		derived: svcMgr.Derived,
	}
}

// AddFieldRequest is a new field with an optional insert position
type AddFieldRequest struct {
	services.FieldInput
	Index *int `json:"index"`
}

// ReorderRequest either lists every field id in the new order or moves one
// field between positions
type ReorderRequest struct {
	Order []string `json:"order"`
	From  *int     `json:"from"`
	To    *int     `json:"to"`
}

// ListForms handles GET /api/forms
func (h *FormHandler) ListForms(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.forms.ListForms(c.Request.Context(), GetOwnerFromContext(c))
	})
}

// CreateForm handles POST /api/forms
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.FormInput
	if !BindJSON(c, &req) {
		return
	}
	form, err := h.forms.CreateForm(c.Request.Context(), GetOwnerFromContext(c), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, form)
}

// GetForm handles GET /api/forms/:formId
func (h *FormHandler) GetForm(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.forms.GetForm(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID))
	})
}

// UpdateForm handles PATCH /api/forms/:formId
func (h *FormHandler) UpdateForm(c *gin.Context) {
	var req services.FormInput
	if !BindJSON(c, &req) {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.forms.UpdateForm(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), req)
	})
}

// DeleteForm handles DELETE /api/forms/:formId
func (h *FormHandler) DeleteForm(c *gin.Context) {
	HandleDelete(c, func() error {
		return h.forms.DeleteForm(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID))
	})
}

// AddField handles POST /api/forms/:formId/fields
func (h *FormHandler) AddField(c *gin.Context) {
	var req AddFieldRequest
	if !BindJSON(c, &req) {
		return
	}
	field, err := h.forms.AddField(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), req.FieldInput, req.Index)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, field)
}

// DuplicateField handles POST /api/forms/:formId/fields/:fieldId/duplicate
func (h *FormHandler) DuplicateField(c *gin.Context) {
	field, err := h.forms.DuplicateField(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, field)
}

// UpdateField handles PATCH /api/forms/:formId/fields/:fieldId
func (h *FormHandler) UpdateField(c *gin.Context) {
	var req services.FieldInput
	if !BindJSON(c, &req) {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.forms.UpdateField(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID), req)
	})
}

// RemoveField handles DELETE /api/forms/:formId/fields/:fieldId.
// The response lists derived fields that lost this field as a parent.
func (h *FormHandler) RemoveField(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.forms.RemoveField(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID))
	})
}

// ReorderFields handles PUT /api/forms/:formId/fields/order
func (h *FormHandler) ReorderFields(c *gin.Context) {
	var req ReorderRequest
	if !BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	owner := GetOwnerFromContext(c)
	formID := c.Param(constants.ParamFormID)

	HandleGet(c, func() (interface{}, error) {
		switch {
		case req.From != nil && req.To != nil:
			return h.forms.MoveField(ctx, owner, formID, *req.From, *req.To)
		case req.Order != nil:
			return h.forms.ReorderFields(ctx, owner, formID, req.Order)
		default:
			return nil, errors.NewValidationError("order", "Provide either order or from/to")
		}
	})
}

// PromoteField handles POST /api/forms/:formId/fields/:fieldId/derived
func (h *FormHandler) PromoteField(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.derived.Promote(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID))
	})
}

// DemoteField handles DELETE /api/forms/:formId/fields/:fieldId/derived
func (h *FormHandler) DemoteField(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.derived.Demote(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID))
	})
}

// GetDerivedConfig handles GET /api/forms/:formId/fields/:fieldId/derived
func (h *FormHandler) GetDerivedConfig(c *gin.Context) {
	HandleGet(c, func() (interface{}, error) {
		return h.derived.GetConfig(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID))
	})
}

// SetDerivedConfig handles PUT /api/forms/:formId/fields/:fieldId/derived.
// The formula is written against parent labels.
func (h *FormHandler) SetDerivedConfig(c *gin.Context) {
	var req services.DerivedInput
	if !BindJSON(c, &req) {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.derived.SetConfig(c.Request.Context(), GetOwnerFromContext(c), c.Param(constants.ParamFormID), c.Param(constants.ParamFieldID), req)
	})
}
