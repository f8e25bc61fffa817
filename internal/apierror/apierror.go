// Package apierror defines the error taxonomy shared by services and handlers.
// Every error that crosses the service boundary carries a machine-checkable
// Kind; handlers map Kinds to HTTP status codes and never leak internal
// details (stack traces, SQL errors) to clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable, machine-checkable error category.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindInsufficientStock   Kind = "insufficient_stock"
	KindInsufficientPayment Kind = "insufficient_payment"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindTransient           Kind = "transient_error"
	KindInternal            Kind = "internal_error"
)

// HTTPStatus maps a Kind to its canonical HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInsufficientStock, KindInsufficientPayment:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the canonical domain error. Message is safe to show to clients;
// the wrapped cause (if any) is for logs only.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages when Kind is KindValidation.
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given kind and client-safe message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an Error with a formatted client-safe message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an internal cause to a client-safe message.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// Validation builds a field-level validation error.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Errores de validación", Fields: fields}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err. Unclassified errors get a
// generic message so internals are never exposed.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Error interno del servidor"
}

// FieldsOf returns the validation field map of err, or nil.
func FieldsOf(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
