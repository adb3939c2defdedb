package types

// ErrorCode classifies an API error
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeConflict   ErrorCode = "CONFLICT"
	CodeBadRequest ErrorCode = "BAD_REQUEST"
	CodeInternal   ErrorCode = "INTERNAL"

	// only produced by the optional admin auth and rate limiting
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
)

// Stable messages returned to clients
const (
	MsgExpectedMultipart    = "Expected multipart/form-data"
	MsgInvalidSlug          = "Invalid slug"
	MsgMissingFile          = "Missing file"
	MsgEmptyFile            = "Empty file"
	MsgUnsupportedImageType = "Unsupported image type"
	MsgInvalidPath          = "Invalid path"
	MsgInvalidPayload       = "Invalid payload"
	MsgRecipeNotFound       = "Recipe not found"
	MsgNotFound             = "Not found"
	MsgUnexpectedError      = "Unexpected error"
	MsgSlugNotGenerated     = "Slug could not be generated"
	MsgSlugMustBeUnique     = "Recipe slug must be unique"
	MsgMissingAuthorization = "Missing authorization header"
	MsgInvalidAuthorization = "Invalid authorization header"
	MsgAdminRequired        = "Admin role required"
	MsgRateLimitExceeded    = "Rate limit exceeded"
)

// APIError is the body of every error response
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps APIError as {"error": {...}}
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(code ErrorCode, message string, details interface{}) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message, Details: details}}
}
