package logger

import "go.uber.org/zap"

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs is the request latency in milliseconds.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// ─── Identity ───

func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func RoleID(v string) zap.Field   { return zap.String("role_id", v) }
func RoleName(v string) zap.Field { return zap.String("role", v) }

// Roles logs the role snapshot placed in a token.
func Roles(v []string) zap.Field { return zap.Strings("roles", v) }

// Email logs a login handle. Keep it at debug or warn level in prod.
func Email(v string) zap.Field { return zap.String("email", v) }

// ─── System ───

// Layer is controller, service, repository or middleware.
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Driver(v string) zap.Field    { return zap.String("driver", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// ─── Generic ───

func String(key, v string) zap.Field           { return zap.String(key, v) }
func Int(key string, v int) zap.Field          { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field        { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field          { return zap.Any(key, v) }
func Strings(key string, v []string) zap.Field { return zap.Strings(key, v) }
