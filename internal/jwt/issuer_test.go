package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

var (
	testKey  = []byte("0123456789abcdef0123456789abcdef")
	testUser = repository.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}
	fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestIssuer(t *testing.T, now func() time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer(IssuerConfig{SigningKey: testKey, Issuer: "rolbazli", Audience: "rolbazli-clients"}, WithClock(now))
	require.NoError(t, err)
	return iss
}

func TestNewIssuerConfiguration(t *testing.T) {
	cases := map[string]IssuerConfig{
		"jwt.signing_key": {Issuer: "i", Audience: "a"},
		"jwt.issuer":      {SigningKey: testKey, Audience: "a"},
		"jwt.audience":    {SigningKey: testKey, Issuer: "i"},
	}
	for setting, cfg := range cases {
		_, err := NewIssuer(cfg)
		require.ErrorIs(t, err, errs.ErrConfiguration, setting)
		var ce *errs.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, setting, ce.Setting)
	}
}

func TestIssueTokenZeroIssuer(t *testing.T) {
	var iss *Issuer
	_, err := iss.IssueToken(testUser, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestIssueTokenClaims(t *testing.T) {
	iss := newTestIssuer(t, func() time.Time { return fixedNow })

	tok, err := iss.IssueToken(testUser, []string{"Admin", "User"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, tok.IssuedAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), tok.ExpiresAt)

	parts := strings.Split(tok.Value, ".")
	require.Len(t, parts, 3)

	header := decodeSegment(t, parts[0])
	assert.Equal(t, "HS256", header["alg"])

	payload := decodeSegment(t, parts[1])
	assert.Equal(t, "u-1", payload["sub"])
	assert.Equal(t, "u-1", payload["nameid"])
	assert.Equal(t, "ada@example.com", payload["email"])
	assert.Equal(t, "Ada", payload["name"])
	assert.Equal(t, "rolbazli", payload["iss"])
	assert.Equal(t, []any{"rolbazli-clients"}, payload["aud"])
	assert.Equal(t, []any{"Admin", "User"}, payload["role"])
	assert.EqualValues(t, fixedNow.Unix(), payload["iat"])
	assert.EqualValues(t, fixedNow.Add(TokenTTL).Unix(), payload["exp"])
}

func decodeSegment(t *testing.T, seg string) map[string]any {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(seg)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestBuildClaimsCopiesRoles(t *testing.T) {
	roles := []string{"Admin"}
	c := BuildClaims(testUser, roles, "i", "a")
	roles[0] = "Mutated"
	assert.Equal(t, []string{"Admin"}, c.Roles)
	assert.True(t, c.HasRole("Admin"))
	assert.False(t, c.HasRole("admin"))
	assert.Nil(t, c.ExpiresAt, "time fields are set at signing")
}

func TestParseRoundTrip(t *testing.T) {
	iss := newTestIssuer(t, func() time.Time { return fixedNow })
	tok, err := iss.IssueToken(testUser, []string{"User"})
	require.NoError(t, err)

	claims, err := iss.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, []string{"User"}, claims.Roles)
}

func TestParseExpiryBoundary(t *testing.T) {
	now := fixedNow
	iss := newTestIssuer(t, func() time.Time { return now })
	tok, err := iss.IssueToken(testUser, nil)
	require.NoError(t, err)
	exp := fixedNow.Add(TokenTTL)

	tests := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{"at expiry", exp, false},
		{"within leeway", exp.Add(leeway - time.Second), false},
		{"at leeway", exp.Add(leeway), true},
		{"just past leeway", exp.Add(leeway + time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			_, err := iss.Parse(tok.Value)
			if tt.expired {
				assert.ErrorIs(t, err, ErrExpiredToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	now := fixedNow
	clock := func() time.Time { return now }
	iss := newTestIssuer(t, clock)
	tok, err := iss.IssueToken(testUser, nil)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		now = fixedNow.Add(TokenTTL + time.Minute)
		defer func() { now = fixedNow }()
		_, err := iss.Parse(tok.Value)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.ErrorIs(t, err, errs.ErrCredential)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewIssuer(IssuerConfig{SigningKey: []byte("another-key"), Issuer: "rolbazli", Audience: "rolbazli-clients"}, WithClock(clock))
		require.NoError(t, err)
		_, err = other.Parse(tok.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other audience", func(t *testing.T) {
		other, err := NewIssuer(IssuerConfig{SigningKey: testKey, Issuer: "rolbazli", Audience: "someone-else"}, WithClock(clock))
		require.NoError(t, err)
		_, err = other.Parse(tok.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		c := BuildClaims(testUser, nil, "rolbazli", "rolbazli-clients")
		c.ExpiresAt = jwtv5.NewNumericDate(fixedNow.Add(time.Hour))
		raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, c).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := BuildClaims(testUser, nil, "rolbazli", "rolbazli-clients")
		raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, c).SignedString(testKey)
		require.NoError(t, err)
		_, err = iss.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = iss.Parse("a.b.c")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestKeyIsCopied(t *testing.T) {
	key := append([]byte(nil), testKey...)
	iss, err := NewIssuer(IssuerConfig{SigningKey: key, Issuer: "i", Audience: "a"}, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	tok, err := iss.IssueToken(testUser, nil)
	require.NoError(t, err)

	key[0] ^= 0xff
	_, err = iss.Parse(tok.Value)
	assert.NoError(t, err)
}

func TestIssueTokenConcurrent(t *testing.T) {
	iss := newTestIssuer(t, time.Now)
	var wg sync.WaitGroup
	for n := 0; n < 32; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := iss.IssueToken(testUser, []string{"User"})
			if assert.NoError(t, err) {
				_, err = iss.Parse(tok.Value)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
