// Package response implements the standard JSON envelope used by every
// endpoint: {success, message|error, data, timestamp}.
package response

import (
	"net/http"
	"time"

	"github.com/oajacap/kissu/internal/apierror"

	"github.com/gin-gonic/gin"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// OK writes a 200 success envelope.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Timestamp: now()})
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data, Timestamp: now()})
}

// Fail translates a domain error into its envelope and status code.
func Fail(c *gin.Context, err error) {
	kind := apierror.KindOf(err)
	c.JSON(kind.HTTPStatus(), Envelope{
		Success:   false,
		Error:     apierror.MessageOf(err),
		Kind:      string(kind),
		Fields:    apierror.FieldsOf(err),
		Timestamp: now(),
	})
}

// AbortError writes the envelope for err and aborts the middleware chain.
func AbortError(c *gin.Context, err error) {
	kind := apierror.KindOf(err)
	c.AbortWithStatusJSON(kind.HTTPStatus(), Envelope{
		Success:   false,
		Error:     apierror.MessageOf(err),
		Kind:      string(kind),
		Timestamp: now(),
	})
}

// AbortStatus writes a bare error envelope with an explicit status code.
// Used by middleware for auth/rate-limit failures that have no domain error.
func AbortStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg, Timestamp: now()})
}
