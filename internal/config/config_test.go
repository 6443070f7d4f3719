package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
)

const validYAML = `
app:
  env: prod
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: postgres://rolbazli@localhost/rolbazli
jwt:
  issuer: https://auth.example.com
  audience: rolbazli-clients
  signing_key: 0123456789abcdef0123456789abcdef
rbac:
  delete_policy: cascade
auth:
  unify_login_errors: false
rate:
  login:
    limit: 5
    window: 30s
security:
  password_blacklist_path: blacklist.txt
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, validYAML)

	c, err := Load(path)
	require.NoError(t, err)

	assert.True(t, c.IsProd())
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "cascade", c.RBAC.DeletePolicy)
	assert.False(t, c.Auth.UnifyLoginErrors, "file overrides a true default")
	assert.Equal(t, Window{Limit: 5, Window: 30 * time.Second}, c.Rate.Login)
	assert.Equal(t, Window{Limit: 120, Window: time.Minute}, c.Rate.API, "untouched defaults survive")
	assert.Equal(t, []string{"Admin", "User"}, c.RBAC.SeedRoles)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "blacklist.txt"), c.Security.PasswordBlacklistPath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, validYAML)
	t.Setenv("ROLBAZLI_SERVER_ADDR", ":7070")
	t.Setenv("ROLBAZLI_JWT_AUDIENCE", "other-clients")
	t.Setenv("ROLBAZLI_RATE_LOGIN_LIMIT", "3")
	t.Setenv("ROLBAZLI_RBAC_SEED_ROLES", "Admin,User,Auditor")
	t.Setenv("ROLBAZLI_AUTH_UNIFY_LOGIN_ERRORS", "true")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, "other-clients", c.JWT.Audience)
	assert.Equal(t, 3, c.Rate.Login.Limit)
	assert.Equal(t, 30*time.Second, c.Rate.Login.Window)
	assert.Equal(t, []string{"Admin", "User", "Auditor"}, c.RBAC.SeedRoles)
	assert.True(t, c.Auth.UnifyLoginErrors)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("ROLBAZLI_STORAGE_DRIVER", "memory")
	t.Setenv("ROLBAZLI_JWT_ISSUER", "rolbazli")
	t.Setenv("ROLBAZLI_JWT_AUDIENCE", "rolbazli")
	t.Setenv("ROLBAZLI_JWT_SIGNING_KEY", "0123456789abcdef0123456789abcdef")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.True(t, c.Auth.UnifyLoginErrors)
	assert.Equal(t, "restrict", c.RBAC.DeletePolicy)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateSigningKey(t *testing.T) {
	t.Setenv("ROLBAZLI_STORAGE_DRIVER", "memory")
	t.Setenv("ROLBAZLI_JWT_ISSUER", "rolbazli")
	t.Setenv("ROLBAZLI_JWT_AUDIENCE", "rolbazli")

	_, err := Load("")
	require.ErrorIs(t, err, errs.ErrConfiguration)
	var ce *errs.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "jwt.signing_key", ce.Setting)

	t.Setenv("ROLBAZLI_JWT_SIGNING_KEY", "short")
	_, err = Load("")
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "32 bytes")
}

func TestValidateCollectsProblems(t *testing.T) {
	c := Default()
	c.Storage.Driver = "mongo"
	c.RBAC.DeletePolicy = "orphan"
	c.Rate.Backend = "memcached"
	c.Bootstrap.AdminEmail = "root@example.com"
	c.Server.TrustedProxies = []string{"10.0.0.0/8", "lb.internal"}
	c.Rate.LoginEmail.Limit = 0

	err := c.Validate()
	require.Error(t, err)
	for _, setting := range []string{
		"jwt.signing_key", "jwt.issuer", "jwt.audience",
		"storage.driver", "rbac.delete_policy", "rate.backend", "bootstrap",
		"server.trusted_proxies", "rate.login_email",
	} {
		assert.Contains(t, err.Error(), setting)
	}
}

func TestValidatePostgresNeedsDSN(t *testing.T) {
	c := Default()
	c.JWT.Issuer, c.JWT.Audience = "i", "a"
	c.JWT.SigningKey = "0123456789abcdef0123456789abcdef"

	err := c.Validate()
	require.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Contains(t, err.Error(), "storage.dsn")

	c.Storage.DSN = "postgres://localhost/rolbazli"
	assert.NoError(t, c.Validate())
}
