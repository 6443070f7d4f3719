package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name string `json:"name"`
}

func TestReadJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		r.Header.Set("Content-Type", "application/json")
		var p payload
		assert.True(t, ReadJSON(httptest.NewRecorder(), r, &p))
		assert.Equal(t, "x", p.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		var p payload
		assert.True(t, ReadJSON(httptest.NewRecorder(), r, &p))
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()
		var p payload
		assert.False(t, ReadJSON(rec, r, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`name=x`))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		var p payload
		assert.False(t, ReadJSON(rec, r, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		var p payload
		assert.False(t, ReadJSON(rec, r, &p))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRequireMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, RequireMethod(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.MethodPost))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))

	assert.True(t, RequireMethod(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), http.MethodPost))
}
