package errors

import (
	"fmt"
	"net/http"
)

// AppError is the error shape every handler writes.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Detail     string            `json:"detail,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"` // response status, not serialized
	Err        error             `json:"-"` // cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// The With* helpers return a copy so the package-level values stay untouched.

func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

func (e *AppError) WithMessage(message string) *AppError {
	newErr := *e
	newErr.Message = message
	return &newErr
}

func (e *AppError) WithFields(fields map[string]string) *AppError {
	newErr := *e
	newErr.Fields = fields
	return &newErr
}

func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// PREDEFINED ERRORS
// =================================================================================

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "bad_request",
		Message:    "The request is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "invalid_json",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "validation_failed",
		Message:    "One or more fields are invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "body_too_large",
		Message:    "The request body is too large.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 / 403
var (
	ErrUnauthorized = &AppError{
		Code:       "unauthorized",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "invalid_credentials",
		Message:    "Invalid email or password.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "token_missing",
		Message:    "A bearer token is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "token_invalid",
		Message:    "The token is invalid.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "token_expired",
		Message:    "The token has expired.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "forbidden",
		Message:    "You do not have access to this resource.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405 / 409
var (
	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "The resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "route_not_found",
		Message:    "No route matches this request.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "The method is not allowed on this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "conflict",
		Message:    "The request conflicts with the current state.",
		HTTPStatus: http.StatusConflict,
	}
)

// 429 / 5xx
var (
	ErrRateLimitExceeded = &AppError{
		Code:       "rate_limit_exceeded",
		Message:    "Too many requests, try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "internal_error",
		Message:    "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
