package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	"github.com/dropDatabas3/rolbazli/internal/metrics"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/rate"
)

// extractJSONField reads up to max bytes of a JSON body to pull one string
// field, then restores the body for the handler.
func extractJSONField(r *http.Request, field string, max int64) string {
	if r.Method != http.MethodPost || r.Body == nil ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf.Bytes()), rest), rest}

	var tmp map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tmp); err == nil {
		if s, ok := tmp[field].(string); ok {
			return s
		}
	}
	return ""
}

// RateKeyFunc derives the limiter key of a request.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey keys by client IP.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

func loginEmail(r *http.Request) string {
	email := strings.ToLower(strings.TrimSpace(extractJSONField(r, "email", 4096)))
	if email == "" {
		return "-"
	}
	return email
}

// LoginRateKey keys by client IP and the lower-cased email of the body.
func LoginRateKey(r *http.Request) string {
	return "ip|" + clientIP(r) + "|" + loginEmail(r)
}

// LoginEmailRateKey keys by email alone. One account keeps a single budget
// however many addresses the attempts come from.
func LoginEmailRateKey(r *http.Request) string {
	return "email|" + loginEmail(r)
}

// RateLimitConfig configures WithRateLimit.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	// Scope labels the rejection metric (login, api).
	Scope string
}

// WithRateLimit rejects requests over the limiter budget with 429. Limiter
// errors fail open.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPOnlyRateKey
	}
	if cfg.Scope == "" {
		cfg.Scope = "api"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.Scope+"|"+cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					secs := int(res.RetryAfter.Round(time.Second).Seconds())
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				metrics.RateLimited.WithLabelValues(cfg.Scope).Inc()
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
