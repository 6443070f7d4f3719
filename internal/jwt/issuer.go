// Package jwt issues and verifies HS256 access tokens.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

// TokenTTL is the lifetime of every access token.
const TokenTTL = 24 * time.Hour

// leeway tolerates clock skew between issuer and verifier: Parse still
// accepts a token until exp + leeway.
const leeway = 30 * time.Second

var (
	ErrInvalidToken = errs.New("invalid token", errs.ErrCredential)
	ErrExpiredToken = errs.New("token expired", errs.ErrCredential)
)

// IssuerConfig is the immutable signing configuration.
type IssuerConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
}

// Token is a signed access token.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies tokens. It is safe for concurrent use.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer validates cfg and copies the key.
func NewIssuer(cfg IssuerConfig, opts ...Option) (*Issuer, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, &errs.ConfigurationError{Setting: "jwt.signing_key", Reason: "must not be empty"}
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, &errs.ConfigurationError{Setting: "jwt.issuer", Reason: "must not be empty"}
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, &errs.ConfigurationError{Setting: "jwt.audience", Reason: "must not be empty"}
	}
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	i := &Issuer{key: key, issuer: cfg.Issuer, audience: cfg.Audience, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issuer returns the configured "iss".
func (i *Issuer) Issuer() string { return i.issuer }

// Audience returns the configured "aud".
func (i *Issuer) Audience() string { return i.audience }

// IssueToken signs the claims of user with roles. Expiry is exactly TokenTTL
// after issuance.
func (i *Issuer) IssueToken(user repository.User, roles []string) (Token, error) {
	if i == nil || len(i.key) == 0 {
		return Token{}, &errs.ConfigurationError{Setting: "jwt.signing_key", Reason: "must not be empty"}
	}

	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(TokenTTL)

	claims := BuildClaims(user, roles, i.issuer, i.audience)
	claims.IssuedAt = jwtv5.NewNumericDate(now)
	claims.NotBefore = jwtv5.NewNumericDate(now)
	claims.ExpiresAt = jwtv5.NewNumericDate(exp)

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.key)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return Token{Value: signed, IssuedAt: now, ExpiresAt: exp}, nil
}

// Parse verifies raw and returns its claims. Only HS256 tokens for this
// issuer and audience with an unexpired "exp" are accepted.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwtv5.ParseWithClaims(raw, claims,
		func(*jwtv5.Token) (any, error) { return i.key, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.issuer),
		jwtv5.WithAudience(i.audience),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
