package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
)

var errRoleGone = errs.New("Role not found.", errs.ErrNotFound)

func TestFromError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found keeps message", errRoleGone, http.StatusNotFound, "not_found", "Role not found."},
		{"conflict", errs.New("Role already exist", errs.ErrConflict), http.StatusConflict, "conflict", "Role already exist"},
		{"credential", errs.New("Invalid password!", errs.ErrCredential), http.StatusUnauthorized, "invalid_credentials", "Invalid password!"},
		{"validation", errs.Invalid("email", "required"), http.StatusBadRequest, "validation_failed", ErrValidation.Message},
		{"unknown", stderrors.New("db down"), http.StatusInternalServerError, "internal_error", ErrInternalServerError.Message},
		{"app error passthrough", ErrForbidden, http.StatusForbidden, "forbidden", ErrForbidden.Message},
		{"wrapped app error", fmt.Errorf("ctx: %w", ErrConflict), http.StatusConflict, "conflict", ErrConflict.Message},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			assert.Equal(t, tc.status, got.HTTPStatus)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.message, got.Message)
		})
	}
}

func TestFromErrorDoesNotLeakInternals(t *testing.T) {
	got := FromError(fmt.Errorf("list users: %w", stderrors.New("pq: password authentication failed")))
	assert.Equal(t, ErrInternalServerError.Message, got.Message)
	assert.Empty(t, got.Detail)
	assert.Error(t, got.Err)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errs.Invalid("email", "invalid format"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["isSuccess"])
	assert.Equal(t, "validation_failed", body["code"])
	assert.Equal(t, map[string]any{"email": "invalid format"}, body["fields"])
}

func TestWithHelpersCopy(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	assert.Equal(t, "x", e.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}
