// Package bootstrap seeds the role set and the first administrator.
package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
	"github.com/dropDatabas3/rolbazli/internal/util"
	"github.com/dropDatabas3/rolbazli/internal/validation"
)

// EnsureRoles creates every role in names that does not exist yet and
// returns the ones it created.
func EnsureRoles(ctx context.Context, roles repository.RoleRepository, names []string) ([]string, error) {
	log := logger.From(ctx).With(logger.Layer("bootstrap"), logger.Op("EnsureRoles"))

	var created []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		exists, err := roles.Exists(ctx, name)
		if err != nil {
			return created, fmt.Errorf("check role %q: %w", name, err)
		}
		if exists {
			continue
		}
		if _, err := roles.Create(ctx, name); err != nil {
			// lost a race with another replica
			if repository.IsConflict(err) {
				continue
			}
			return created, fmt.Errorf("create role %q: %w", name, err)
		}
		log.Info("role seeded", logger.RoleName(name))
		created = append(created, name)
	}
	return created, nil
}

// AdminConfig configures EnsureAdmin.
type AdminConfig struct {
	Users  repository.UserRepository
	Access identity.AccessController

	Email     string
	Password  string
	Name      string
	AdminRole string

	// Prompt, when set and neither Email nor Password is configured, asks
	// for the credentials.
	Prompt *Prompter
}

// EnsureAdmin registers the configured administrator with the admin role
// unless an account with that email already exists. It reports whether an
// account was created.
func EnsureAdmin(ctx context.Context, cfg AdminConfig) (bool, error) {
	log := logger.From(ctx).With(logger.Layer("bootstrap"), logger.Op("EnsureAdmin"))

	if cfg.Email == "" && cfg.Password == "" && cfg.Prompt != nil {
		email, pwd, err := cfg.Prompt.AdminCredentials()
		if err != nil {
			return false, fmt.Errorf("prompt admin credentials: %w", err)
		}
		cfg.Email, cfg.Password = email, pwd
	}
	switch {
	case cfg.Email == "" && cfg.Password == "":
		log.Debug("no admin configured")
		return false, nil
	case cfg.Email == "" || cfg.Password == "":
		return false, errAdminHalfConfigured
	}

	email := validation.NormalizeEmail(cfg.Email)
	_, err := cfg.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug("admin account present", logger.Email(util.MaskEmail(email)))
		return false, nil
	case !repository.IsNotFound(err):
		return false, fmt.Errorf("look up admin: %w", err)
	}

	user, err := cfg.Access.RegisterWithRoles(ctx, identity.NewUser{
		Email:    email,
		Name:     cfg.Name,
		Password: cfg.Password,
	}, []string{cfg.AdminRole})
	if err != nil {
		if user == nil {
			return false, fmt.Errorf("create admin: %w", err)
		}
		// the account exists but the admin role is missing
		return true, fmt.Errorf("assign %s to admin: %w", cfg.AdminRole, err)
	}

	log.Info("admin account created", logger.UserID(user.ID), logger.Email(util.MaskEmail(email)))
	return true, nil
}

// Prompter reads admin credentials from a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword reads one line without echo (term.ReadPassword).
	ReadPassword func() ([]byte, error)
}

// MinPromptPasswordLen is enforced on interactively typed passwords.
const MinPromptPasswordLen = 10

var (
	errPasswordMismatch    = errors.New("passwords do not match")
	errAdminHalfConfigured = errors.New("admin email and password go together")
)

// AdminCredentials asks for the email, the password and its confirmation.
func (p *Prompter) AdminCredentials() (email, password string, err error) {
	reader := bufio.NewReader(p.In)

	fmt.Fprint(p.Out, "Admin email: ")
	email, err = reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && email != "") {
		return "", "", err
	}
	email = strings.TrimSpace(email)
	if !validation.ValidEmail(email) {
		return "", "", fmt.Errorf("invalid email %q", email)
	}

	fmt.Fprintf(p.Out, "Admin password (min %d chars): ", MinPromptPasswordLen)
	pwd, err := p.ReadPassword()
	if err != nil {
		return "", "", err
	}
	fmt.Fprintln(p.Out)
	if len(pwd) < MinPromptPasswordLen {
		return "", "", fmt.Errorf("password must be at least %d characters", MinPromptPasswordLen)
	}

	fmt.Fprint(p.Out, "Confirm password: ")
	confirm, err := p.ReadPassword()
	if err != nil {
		return "", "", err
	}
	fmt.Fprintln(p.Out)
	if string(pwd) != string(confirm) {
		return "", "", errPasswordMismatch
	}
	return email, string(pwd), nil
}
