package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes rendered to clients in the "error" field.
const (
	CodeInvalidPayload   = "invalid_payload"
	CodeMissingToken     = "missing_token"
	CodeInvalidToken     = "invalid_token"
	CodeNotAuthenticated = "not_authenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeInvalidRole      = "invalid_role"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(code, message string) error {
	return NewDomainError(code, message, http.StatusBadRequest)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorized(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden)
}

func NewTooManyRequests(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	code := CodeInternal
	switch err.Code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = CodeInvalidPayload
	case http.StatusUnauthorized:
		code = CodeNotAuthenticated
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = CodeNotFound
	case http.StatusTooManyRequests:
		code = CodeRateLimited
	}
	return &DomainError{Code: code, Message: err.Message, HTTPStatus: err.Code}
}
