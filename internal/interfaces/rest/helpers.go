package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/auth"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
)

// GetOwnerFromContext returns the owner id set by the auth middleware.
// Requests that bypassed the middleware act as the anonymous owner.
func GetOwnerFromContext(c *gin.Context) string {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return constants.AnonymousOwnerID
	}
	session, ok := value.(auth.OwnerSession)
	if !ok || session.OwnerID == "" {
		return constants.AnonymousOwnerID
	}
	return session.OwnerID
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	resp := errors.ToResponse(err)

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, resp.Message)
	}

	body := gin.H{
		constants.ResponseError: resp.Message, // Legacy
		constants.FieldMessage:  resp.Message, // Standard
		constants.FieldCode:     resp.Code,
		constants.ResponseData:  nil,
	}
	if resp.Details != nil {
		body["details"] = resp.Details
	}
	c.JSON(code, body)
}

// RespondData wraps a result in the {"data": ...} envelope
func RespondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{constants.ResponseData: data})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// HandleGet executes a read action and wraps the result in the data envelope
func HandleGet(c *gin.Context, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondData(c, http.StatusOK, result)
}

// HandleDelete executes a delete action and returns 204 on success
func HandleDelete(c *gin.Context, action func() error) {
	if err := action(); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
