package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	h, err := Hash(Fast, "s3cret!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"), h)

	assert.True(t, Verify("s3cret!", h))
	assert.False(t, Verify("s3cret", h))
	assert.False(t, Verify("", h))

	h2, err := Hash(Fast, "s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salt must differ between hashes")
}

func TestHashEmpty(t *testing.T) {
	_, err := Hash(Fast, "")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestDecoy(t *testing.T) {
	d := NewDecoy(Fast)
	for _, plain := range []string{"", "s3cret!", "decoy"} {
		assert.False(t, d.Verify(plain), plain)
	}
	// same cost parameters as real account hashes
	assert.True(t, strings.HasPrefix(d.hash, "$argon2id$v=19$m=1024,t=1,p=1$"), d.hash)
}

func TestVerifyBcrypt(t *testing.T) {
	b, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, Verify("legacy", string(b)))
	assert.False(t, Verify("other", string(b)))
}

func TestVerifyMalformed(t *testing.T) {
	for _, enc := range []string{
		"",
		"plain",
		"$argon2id$v=19$m=1024,t=1,p=1$onlysalt",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		assert.False(t, Verify("pw", enc), enc)
	}
}

func TestPolicy(t *testing.T) {
	t.Run("zero value only rejects empty", func(t *testing.T) {
		ok, reasons := Policy{}.Validate("pw")
		assert.True(t, ok)
		assert.Empty(t, reasons)

		ok, reasons = Policy{}.Validate("")
		assert.False(t, ok)
		assert.Equal(t, []string{"required"}, reasons)
	})

	t.Run("all rules", func(t *testing.T) {
		p := Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true, RequireSymbol: true}
		ok, reasons := p.Validate("abc")
		assert.False(t, ok)
		assert.Equal(t, []string{"too_short", "missing_upper", "missing_digit", "missing_symbol"}, reasons)

		ok, _ = p.Validate("Abcdef1!")
		assert.True(t, ok)
	})

	t.Run("blacklist", func(t *testing.T) {
		bl, err := ReadBlacklist(strings.NewReader("# common\nPassword\n\nqwerty\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, bl.Len())

		ok, reasons := Policy{Blacklist: bl}.Validate("password")
		assert.False(t, ok)
		assert.Equal(t, []string{"blacklisted"}, reasons)
	})
}

func TestLoadBlacklistEmptyPath(t *testing.T) {
	bl, err := LoadBlacklist("  ")
	require.NoError(t, err)
	assert.Equal(t, 0, bl.Len())
	assert.False(t, bl.Contains("anything"))

	var nilList *Blacklist
	assert.False(t, nilList.Contains("x"))
}
