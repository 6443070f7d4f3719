package middlewares

import (
	"net/http"

	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
)

// RequireRole lets the request through when the token holds at least one of
// roles (exact match). It must run after RequireAuth.
//
// The check reads the role snapshot in the token; membership changes apply
// once the user logs in again.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cl := GetClaims(r.Context())
			if cl == nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if cl.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("insufficient role"))
		})
	}
}
