// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"naql_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure half of the {success, message} envelope used
// by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// internalMessage is returned for errors that carry no safe message.
const internalMessage = "internal error"

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error sends a failure envelope with the given status code and message.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Success: false, Message: message, Errors: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses. A typed *apperr.Error
// decides the status and supplies a caller-safe message; anything else is
// reported as a 500 without echoing the error text.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	if domainErr, ok := apperr.As(err); ok {
		if domainErr.RetryAfter > 0 {
			c.Header("Retry-After", retryAfterHeader(domainErr.RetryAfter))
		}
		Error(c, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details)
		return true
	}

	Error(c, http.StatusInternalServerError, internalMessage, nil)
	return true
}
