package constants

// HTTP and API constants
const (
	ContentTypeJSON = "application/json"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	// Auth
	BearerPrefix = "Bearer "

	// Response Keys
	ResponseError = "error"
	ResponseData  = "data"
	FieldMessage  = "message"
	FieldCode     = "code"
)

// Context Keys
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// Route parameters
const (
	ParamFormID    = "formId"
	ParamFieldID   = "fieldId"
	ParamSessionID = "sessionId"
)
