package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
)

func invalid(setting, reason string) error {
	return &errs.ConfigurationError{Setting: setting, Reason: reason}
}

// Validate reports every setting that prevents the service from starting.
// The result matches errs.ErrConfiguration.
func (c *Config) Validate() error {
	var problems []error

	switch key := c.JWT.SigningKey; {
	case strings.TrimSpace(key) == "":
		problems = append(problems, invalid("jwt.signing_key", "must not be empty"))
	case len(key) < MinSigningKeyLen:
		problems = append(problems, invalid("jwt.signing_key", "must be at least 32 bytes"))
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		problems = append(problems, invalid("jwt.issuer", "must not be empty"))
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		problems = append(problems, invalid("jwt.audience", "must not be empty"))
	}

	switch c.Storage.Driver {
	case "postgres", "pg", "postgresql":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			problems = append(problems, invalid("storage.dsn", "required for the postgres driver"))
		}
	case "memory":
	default:
		problems = append(problems, invalid("storage.driver", "must be postgres or memory"))
	}

	if c.RBAC.DefaultRole == "" {
		problems = append(problems, invalid("rbac.default_role", "must not be empty"))
	}
	if c.RBAC.AdminRole == "" {
		problems = append(problems, invalid("rbac.admin_role", "must not be empty"))
	}
	switch c.RBAC.DeletePolicy {
	case "", "restrict", "cascade":
	default:
		problems = append(problems, invalid("rbac.delete_policy", "must be restrict or cascade"))
	}

	if c.Rate.Enabled {
		switch c.Rate.Backend {
		case "memory":
		case "redis":
			if strings.TrimSpace(c.Rate.Redis.Addr) == "" {
				problems = append(problems, invalid("rate.redis.addr", "required for the redis backend"))
			}
		default:
			problems = append(problems, invalid("rate.backend", "must be memory or redis"))
		}
		for name, w := range map[string]Window{
			"rate.login":       c.Rate.Login,
			"rate.login_email": c.Rate.LoginEmail,
			"rate.api":         c.Rate.API,
		} {
			if w.Limit <= 0 || w.Window <= 0 {
				problems = append(problems, invalid(name, "limit and window must be positive"))
			}
		}
	}

	for _, p := range c.Server.TrustedProxies {
		if !validProxy(strings.TrimSpace(p)) {
			problems = append(problems, invalid("server.trusted_proxies", fmt.Sprintf("%q is not an IP or CIDR", p)))
		}
	}

	if p := c.Security.PasswordPolicy.MinLength; p < 0 {
		problems = append(problems, invalid("security.password_policy.min_length", "must not be negative"))
	}
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		problems = append(problems, invalid("bootstrap", "admin_email and admin_password go together"))
	}

	return errors.Join(problems...)
}

func validProxy(p string) bool {
	if strings.Contains(p, "/") {
		_, _, err := net.ParseCIDR(p)
		return err == nil
	}
	return net.ParseIP(p) != nil
}
