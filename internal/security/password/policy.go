package password

import (
	"strings"
	"unicode"
)

// Policy is the rule set applied to new passwords. The zero value only
// rejects the empty password.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	Blacklist     *Blacklist
}

// Validate returns the list of broken rules, empty when s is acceptable.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if s == "" {
		return false, []string{"required"}
	}
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "blacklisted")
	}
	return len(reasons) == 0, reasons
}

// Describe joins reasons for a user-facing message.
func Describe(reasons []string) string {
	return strings.Join(reasons, ", ")
}
