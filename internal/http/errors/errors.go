// Package errors writes uniform JSON error responses and maps core error
// kinds onto them.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
)

// errorResponse is the wire shape. isSuccess mirrors the success payloads.
type errorResponse struct {
	IsSuccess bool              `json:"isSuccess"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Detail    string            `json:"detail,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// WriteError writes err as JSON. Non-AppError values go through FromError.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Fields:  appErr.Fields,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromError converts err into an AppError.
//
// Core errors carry user-facing messages, so those pass through; anything
// without a known kind becomes a 500 that keeps err as its cause.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var ve *errs.ValidationError
	if stderrors.As(err, &ve) {
		return ErrValidation.WithFields(ve.Fields).WithCause(err)
	}

	var base *AppError
	switch {
	case stderrors.Is(err, errs.ErrValidation):
		base = ErrValidation
	case stderrors.Is(err, errs.ErrNotFound):
		base = ErrNotFound
	case stderrors.Is(err, errs.ErrConflict):
		base = ErrConflict
	case stderrors.Is(err, errs.ErrCredential):
		base = ErrInvalidCredentials
	default:
		return ErrInternalServerError.WithCause(err)
	}

	out := base.WithCause(err)
	var ce *errs.Error
	if stderrors.As(err, &ce) {
		out.Message = ce.Error()
	}
	return out
}
