package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxRoleNameLen matches the width of the role name column.
const MaxRoleNameLen = 256

// Email rules:
// - Bare address only, no display name ("Bob <b@x.com>" is rejected).
// - Domain must contain a dot and no leading/trailing dot or hyphen per label.
// - Length 3..254.
var emailDomainRe = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)(?:\.(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?))+$`)

// NormalizeEmail trims and lowercases a login handle.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether s is a syntactically valid bare address.
func ValidEmail(s string) bool {
	if len(s) < 3 || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	return emailDomainRe.MatchString(s[at+1:])
}

// ValidRoleName reports whether s can be stored as a role name: non-blank,
// at most MaxRoleNameLen runes, no control characters, no surrounding spaces.
func ValidRoleName(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return false
	}
	if utf8.RuneCountInString(s) > MaxRoleNameLen {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
