package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/rolbazli/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxUserIDKey    ctxKey = "user_id"
	ctxRequestIDKey ctxKey = "request_id"
	ctxClientIPKey  ctxKey = "client_ip"
)

// WithClaims stores verified token claims in ctx.
func WithClaims(ctx context.Context, claims *jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

// WithUserID stores the authenticated subject in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

func setClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxClientIPKey, ip)
}

// GetClaims returns the claims set by RequireAuth, or nil.
func GetClaims(ctx context.Context) *jwtx.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*jwtx.Claims)
	return c
}

// GetUserID returns the authenticated subject, or "".
func GetUserID(ctx context.Context) string {
	s, _ := ctx.Value(ctxUserIDKey).(string)
	return s
}

// GetRequestID returns the request id set by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

// GetClientIP returns the address resolved by WithClientIP, or "".
func GetClientIP(ctx context.Context) string {
	s, _ := ctx.Value(ctxClientIPKey).(string)
	return s
}
