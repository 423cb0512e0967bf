package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts a ContainerError to an ErrorResponse for JSON
// serialization.
func (e *ContainerError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}

// AsContainerError converts an error to a ContainerError if possible.
func AsContainerError(err error) (*ContainerError, bool) {
	var ce *ContainerError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HTTPResponse maps any error to a status code and response body. Resolution
// failures keep their own status; everything else becomes a 500 with the
// internal code so constructor errors never leak details to clients.
func HTTPResponse(err error) (int, ErrorResponse) {
	if ce, ok := AsContainerError(err); ok {
		status := ce.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ce.ToResponse()
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{
			Code:    ErrCodeInternal,
			Message: "internal server error",
		},
	}
}
