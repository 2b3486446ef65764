// Package apperrors defines the domain error taxonomy shared by services and
// controllers: NotFound, Forbidden, InvalidRequest, Conflict, Unauthorized.
// Anything that is not one of these kinds is treated as an internal failure
// and never exposed beyond a generic message.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindInvalidRequest
	KindConflict
	KindUnauthorized
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps an error to its response status and user-visible message.
// Store/internal errors collapse to a 500 with a generic message.
func HTTPStatus(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound, e.Message
	case KindForbidden:
		return http.StatusForbidden, e.Message
	case KindInvalidRequest:
		return http.StatusBadRequest, e.Message
	case KindConflict:
		return http.StatusConflict, e.Message
	case KindUnauthorized:
		return http.StatusUnauthorized, e.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
