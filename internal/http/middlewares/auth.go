package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	jwtx "github.com/dropDatabas3/rolbazli/internal/jwt"
)

// TokenVerifier verifies a raw bearer token. *jwt.Issuer implements it.
type TokenVerifier interface {
	Parse(raw string) (*jwtx.Claims, error)
}

// RequireAuth validates "Authorization: Bearer <JWT>" and stores the claims
// and subject in the context. Missing or invalid tokens get 401.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := verifier.Parse(raw)
			if err != nil {
				appErr := httperrors.ErrTokenInvalid
				if errors.Is(err, jwtx.ErrExpiredToken) {
					appErr = httperrors.ErrTokenExpired
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, appErr.WithCause(err))
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
