package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/auth"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
)

// RequireAuth is a middleware that validates JWT tokens. With a nil issuer
// authentication is disabled and every request acts as the anonymous owner.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Set(constants.ContextKeyUser, auth.OwnerSession{OwnerID: constants.AnonymousOwnerID})
			c.Next()
			return
		}

		// Get token from Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			abortWithError(c, errors.NewUnauthorizedError("No authorization token provided"))
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != strings.TrimSpace(constants.BearerPrefix) {
			abortWithError(c, errors.NewUnauthorizedError("Invalid authorization header format"))
			return
		}

		tokenString := parts[1]
		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			abortWithError(c, errors.NewUnauthorizedError(err.Error()))
			return
		}

		// Set owner session in context
		c.Set(constants.ContextKeyUser, claims.Owner)
		c.Set(constants.ContextKeyToken, tokenString)

		c.Next()
	}
}

// abortWithError writes an AppError in the same envelope the REST handlers use
func abortWithError(c *gin.Context, err error) {
	resp := errors.ToResponse(err)
	c.AbortWithStatusJSON(errors.GetHTTPStatus(err), gin.H{
		constants.ResponseError: resp.Message,
		constants.FieldMessage:  resp.Message,
		constants.FieldCode:     resp.Code,
		constants.ResponseData:  nil,
	})
}
