package middlewares

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	jwtx "github.com/dropDatabas3/rolbazli/internal/jwt"
	"github.com/dropDatabas3/rolbazli/internal/rate"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := ChainFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }, mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "h"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36)
}

func newIssuer(t *testing.T, now func() time.Time) *jwtx.Issuer {
	t.Helper()
	opts := []jwtx.Option{}
	if now != nil {
		opts = append(opts, jwtx.WithClock(now))
	}
	iss, err := jwtx.NewIssuer(jwtx.IssuerConfig{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "rolbazli",
		Audience:   "clients",
	}, opts...)
	require.NoError(t, err)
	return iss
}

func TestRequireAuth(t *testing.T) {
	iss := newIssuer(t, nil)
	tok, err := iss.IssueToken(repository.User{ID: "u-1", Email: "a@b.co"}, []string{"Admin"})
	require.NoError(t, err)

	var claims *jwtx.Claims
	var subject string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = GetClaims(r.Context())
		subject = GetUserID(r.Context())
	}), RequireAuth(iss))

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+tok.Value)
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, claims)
		assert.Equal(t, "u-1", subject)
		assert.True(t, claims.HasRole("Admin"))
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token_missing")
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("expired", func(t *testing.T) {
		old := newIssuer(t, func() time.Time { return time.Now().Add(-48 * time.Hour) })
		stale, err := old.IssueToken(repository.User{ID: "u-1"}, nil)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+stale.Value)
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token_expired")
	})
}

func TestRequireRole(t *testing.T) {
	h := Chain(ok, RequireRole("Admin"))

	run := func(ctx context.Context) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(context.Background()))
	assert.Equal(t, http.StatusForbidden, run(WithClaims(context.Background(), &jwtx.Claims{Roles: []string{"User"}})))
	assert.Equal(t, http.StatusForbidden, run(WithClaims(context.Background(), &jwtx.Claims{Roles: []string{"admin"}})))
	assert.Equal(t, http.StatusOK, run(WithClaims(context.Background(), &jwtx.Claims{Roles: []string{"User", "Admin"}})))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, errors.New("redis down")
}

func TestWithRateLimit(t *testing.T) {
	t.Run("blocks over budget", func(t *testing.T) {
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: rate.NewMemoryLimiter(1, time.Minute), Scope: "api"}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("fails open", func(t *testing.T) {
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: failingLimiter{}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("nil limiter", func(t *testing.T) {
		h := Chain(ok, WithRateLimit(RateLimitConfig{}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoginRateKeys(t *testing.T) {
	body := `{"email":" Ada@Example.com ","password":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/account/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.7:5555"

	assert.Equal(t, "ip|10.0.0.7|ada@example.com", LoginRateKey(req))
	assert.Equal(t, "email|ada@example.com", LoginEmailRateKey(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestClientIPResolver(t *testing.T) {
	resolver, err := NewClientIPResolver([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"untrusted peer ignores header", "198.51.100.4:1234", "203.0.113.9", "198.51.100.4"},
		{"trusted peer without header", "192.0.2.1:1234", "", "192.0.2.1"},
		{"trusted peer", "192.0.2.1:1234", "203.0.113.9", "203.0.113.9"},
		{"spoofed leftmost hop", "192.0.2.1:1234", "1.1.1.1, 203.0.113.9, 10.0.0.3", "203.0.113.9"},
		{"garbage hop", "10.0.0.2:80", "nonsense", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, resolver.Resolve(req))
		})
	}

	t.Run("no proxies", func(t *testing.T) {
		none, err := NewClientIPResolver(nil)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		assert.Equal(t, "192.0.2.1", none.Resolve(req))
	})

	t.Run("bad entry", func(t *testing.T) {
		_, err := NewClientIPResolver([]string{"proxy.internal"})
		assert.Error(t, err)
	})
}

func TestLoginLimitIgnoresRotatingForwardedFor(t *testing.T) {
	resolver, err := NewClientIPResolver(nil)
	require.NoError(t, err)
	h := Chain(ok,
		WithClientIP(resolver),
		WithRateLimit(RateLimitConfig{Limiter: rate.NewMemoryLimiter(2, time.Minute), KeyFunc: LoginRateKey, Scope: "login"}),
	)

	statuses := map[int]int{}
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/account/login",
			strings.NewReader(`{"email":"victim@example.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses[rec.Code]++
	}
	assert.Equal(t, map[int]int{http.StatusOK: 2, http.StatusTooManyRequests: 8}, statuses)
}

func TestLoginEmailBudgetAcrossAddresses(t *testing.T) {
	resolver, err := NewClientIPResolver([]string{"192.0.2.1"})
	require.NoError(t, err)
	h := Chain(ok,
		WithClientIP(resolver),
		WithRateLimit(RateLimitConfig{Limiter: rate.NewMemoryLimiter(100, time.Minute), KeyFunc: LoginRateKey, Scope: "login"}),
		WithRateLimit(RateLimitConfig{Limiter: rate.NewMemoryLimiter(3, time.Minute), KeyFunc: LoginEmailRateKey, Scope: "login_email"}),
	)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/account/login",
			strings.NewReader(`{"email":"victim@example.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:4444"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i < 3 {
			assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code, "attempt %d", i)
		}
	}
}

func TestClientIPFallsBackToPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.1", clientIP(req))
}

func TestCORS(t *testing.T) {
	h := Chain(ok, WithCORS([]string{"https://app.example.com/"}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/account/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverAndHeaders(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		WithRecover(), WithSecurityHeaders(), WithNoStore(), WithLogging())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
