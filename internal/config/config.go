// Package config loads the service configuration.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables prefixed with ROLBAZLI_ (e.g. ROLBAZLI_JWT_SIGNING_KEY).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROLBAZLI_"

// MinSigningKeyLen is the HS256 key floor (256 bits).
const MinSigningKeyLen = 32

type Config struct {
	App struct {
		Name    string `yaml:"name" env:"NAME"`
		Env     string `yaml:"env" env:"ENV"` // dev | staging | prod
		Version string `yaml:"version" env:"VERSION"`
	} `yaml:"app" envPrefix:"APP_"`

	Server struct {
		Addr               string        `yaml:"addr" env:"ADDR"`
		ReadTimeout        time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		WriteTimeout       time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
		IdleTimeout        time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
		// TrustedProxies (IPs or CIDRs) may set X-Forwarded-For.
		TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
	} `yaml:"server" envPrefix:"SERVER_"`

	Log struct {
		Level string `yaml:"level" env:"LEVEL"`
	} `yaml:"log" envPrefix:"LOG_"`

	Storage struct {
		Driver      string `yaml:"driver" env:"DRIVER"` // postgres | memory
		DSN         string `yaml:"dsn" env:"DSN"`
		MaxConns    int    `yaml:"max_conns" env:"MAX_CONNS"`
		MinConns    int    `yaml:"min_conns" env:"MIN_CONNS"`
		AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	JWT struct {
		Issuer     string `yaml:"issuer" env:"ISSUER"`
		Audience   string `yaml:"audience" env:"AUDIENCE"`
		SigningKey string `yaml:"signing_key" env:"SIGNING_KEY"`
	} `yaml:"jwt" envPrefix:"JWT_"`

	RBAC struct {
		DefaultRole  string   `yaml:"default_role" env:"DEFAULT_ROLE"`
		AdminRole    string   `yaml:"admin_role" env:"ADMIN_ROLE"`
		DeletePolicy string   `yaml:"delete_policy" env:"DELETE_POLICY"` // restrict | cascade
		SeedRoles    []string `yaml:"seed_roles" env:"SEED_ROLES"`
	} `yaml:"rbac" envPrefix:"RBAC_"`

	Auth struct {
		// UnifyLoginErrors answers unknown email and bad password alike.
		UnifyLoginErrors bool `yaml:"unify_login_errors" env:"UNIFY_LOGIN_ERRORS"`
	} `yaml:"auth" envPrefix:"AUTH_"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length" env:"MIN_LENGTH"`
			RequireUpper  bool `yaml:"require_upper" env:"REQUIRE_UPPER"`
			RequireLower  bool `yaml:"require_lower" env:"REQUIRE_LOWER"`
			RequireDigit  bool `yaml:"require_digit" env:"REQUIRE_DIGIT"`
			RequireSymbol bool `yaml:"require_symbol" env:"REQUIRE_SYMBOL"`
		} `yaml:"password_policy" envPrefix:"PASSWORD_POLICY_"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path" env:"PASSWORD_BLACKLIST_PATH"`
	} `yaml:"security" envPrefix:"SECURITY_"`

	Rate struct {
		Enabled bool   `yaml:"enabled" env:"ENABLED"`
		Backend string `yaml:"backend" env:"BACKEND"` // memory | redis
		Redis   struct {
			Addr     string `yaml:"addr" env:"ADDR"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
			Prefix   string `yaml:"prefix" env:"PREFIX"`
		} `yaml:"redis" envPrefix:"REDIS_"`
		Login      Window `yaml:"login" envPrefix:"LOGIN_"`
		LoginEmail Window `yaml:"login_email" envPrefix:"LOGIN_EMAIL_"`
		API        Window `yaml:"api" envPrefix:"API_"`
	} `yaml:"rate" envPrefix:"RATE_"`

	Bootstrap struct {
		AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
		AdminName     string `yaml:"admin_name" env:"ADMIN_NAME"`
	} `yaml:"bootstrap" envPrefix:"BOOTSTRAP_"`
}

// Window is a fixed-window rate limit.
type Window struct {
	Limit  int           `yaml:"limit" env:"LIMIT"`
	Window time.Duration `yaml:"window" env:"WINDOW"`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() *Config {
	var c Config
	c.App.Name = "rolbazli"
	c.App.Env = "dev"
	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Log.Level = "info"
	c.Storage.Driver = "postgres"
	c.Storage.MaxConns = 10
	c.Storage.MinConns = 2
	c.Storage.AutoMigrate = true
	c.RBAC.DefaultRole = "User"
	c.RBAC.AdminRole = "Admin"
	c.RBAC.DeletePolicy = "restrict"
	c.RBAC.SeedRoles = []string{"Admin", "User"}
	c.Auth.UnifyLoginErrors = true
	c.Rate.Enabled = true
	c.Rate.Backend = "memory"
	c.Rate.Redis.Addr = "localhost:6379"
	c.Rate.Redis.Prefix = "rolbazli:rl:"
	c.Rate.Login = Window{Limit: 10, Window: time.Minute}
	c.Rate.LoginEmail = Window{Limit: 30, Window: 15 * time.Minute}
	c.Rate.API = Window{Limit: 120, Window: time.Minute}
	c.Bootstrap.AdminName = "Administrator"
	return &c
}

// Load reads path (skipped when empty), overlays the environment and validates.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	c.normalize(path)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) normalize(path string) {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Rate.Backend = strings.ToLower(strings.TrimSpace(c.Rate.Backend))
	c.RBAC.DeletePolicy = strings.ToLower(strings.TrimSpace(c.RBAC.DeletePolicy))
	c.RBAC.DefaultRole = strings.TrimSpace(c.RBAC.DefaultRole)
	c.RBAC.AdminRole = strings.TrimSpace(c.RBAC.AdminRole)

	// relative blacklist paths resolve against the YAML file
	if p := strings.TrimSpace(c.Security.PasswordBlacklistPath); p != "" && path != "" && !filepath.IsAbs(p) {
		c.Security.PasswordBlacklistPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}
}

// IsProd reports whether app.env is prod.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }
