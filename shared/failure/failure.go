// Package failure carries the HTTP status and client-facing message of an expected error.
// Anything that is not a Failure is reported as 500 with a generic message.
package failure

import (
	"errors"
	"net/http"
)

type Failure struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, msg string, fields map[string]string) error {
	return &Failure{Code: code, Message: msg, Fields: fields}
}

// BadRequest wraps err as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error(), nil)
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg, nil)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg, nil)
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg, nil)
}

// Validation is a 400 with one message per offending field.
func Validation(msg string, fields map[string]string) error {
	return newFailure(http.StatusBadRequest, msg, fields)
}

// ConflictWithFields is a 409 bound to the fields that collided, such as a taken time slot.
func ConflictWithFields(msg string, fields map[string]string) error {
	return newFailure(http.StatusConflict, msg, fields)
}

// GetCode returns the status of the wrapped Failure, or 500.
func GetCode(err error) int {
	if fail, ok := as(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func GetFields(err error) map[string]string {
	if fail, ok := as(err); ok {
		return fail.Fields
	}

	return nil
}

// GetMessage returns the client-facing message of the wrapped Failure, without the
// prefixes added while it travelled up the stack. Other errors give "".
func GetMessage(err error) string {
	if fail, ok := as(err); ok {
		return fail.Message
	}

	return ""
}

func IsConflict(err error) bool {
	return GetCode(err) == http.StatusConflict
}

func IsFailure(err error) bool {
	_, ok := as(err)

	return ok
}

func as(err error) (*Failure, bool) {
	var fail *Failure
	ok := errors.As(err, &fail)

	return fail, ok
}
