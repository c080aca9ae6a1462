package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/versioning"
)

// ContextKeyAPIVersion holds the versioning.APIVersion of the request
const ContextKeyAPIVersion = "api_version"

// APIVersion rejects clients written against an API version this server
// cannot serve and stamps every response with the served version
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(versioning.Header, versioning.Current.String())

		version, err := versioning.ParseVersion(c.GetHeader(versioning.Header))
		if err == nil && !version.Compatible(versioning.Current) {
			err = fmt.Errorf("API version %s is not supported, this server speaks %s", version, versioning.Current)
		}
		if err != nil {
			appErr := errors.NewValidationError(versioning.Header, err.Error())
			c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{
				constants.ResponseError: appErr.Error(),
				constants.FieldMessage:  appErr.Error(),
				constants.FieldCode:     appErr.Code(),
				constants.ResponseData:  nil,
			})
			return
		}

		c.Set(ContextKeyAPIVersion, version)
		c.Next()
	}
}
