package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftfolio/craftfolio-api/pkg/apperr"
)

// Envelope is the uniform response body every endpoint returns, success or not.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK writes a success envelope with the given status.
func OK[T any](c *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{Success: true, Data: data, Message: message})
}

// Fail writes an error envelope with the given status and message.
func Fail(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, Envelope[any]{Success: false, Message: message})
}

// FromError maps a service error onto the envelope. This is the single
// terminal point where error kinds become status codes.
func FromError(c *gin.Context, err error) {
	Fail(c, apperr.StatusOf(err), apperr.MessageOf(err))
}

// AbortError is FromError plus request abort, for middleware use.
func AbortError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	c.AbortWithStatusJSON(status, Envelope[any]{Success: false, Message: apperr.MessageOf(err)})
}
