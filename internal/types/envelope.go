package types

// ErrorBody is the error slot carried by every response envelope
type ErrorBody struct {
	Message string  `json:"message"`
	Code    *string `json:"code"`
	Status  int     `json:"status"`
}

// NewErrorBody builds an ErrorBody; an empty code is sent as null
func NewErrorBody(status int, code, message string) *ErrorBody {
	body := &ErrorBody{Message: message, Status: status}
	if code != "" {
		body.Code = &code
	}
	return body
}

// CodeString returns the error code or "" when absent
func (e *ErrorBody) CodeString() string {
	if e == nil || e.Code == nil {
		return ""
	}
	return *e.Code
}

// Envelope is embedded in every response body
type Envelope struct {
	Error *ErrorBody `json:"error"`
}

// APIError exposes the error slot to generic decoders
func (e Envelope) APIError() *ErrorBody {
	return e.Error
}

// Error codes shared by the server and the client
const (
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeInvalidRequest = "invalid_request"
	CodeInvalidFile    = "invalid_file"
	CodeRateLimited    = "rate_limited"
	CodeExtraction     = "extraction_failed"
	CodeUnavailable    = "unavailable"
	CodeConflict       = "conflict"
	CodeInvalidLogin   = "invalid_credentials"
	CodeInternal       = "internal"
)
