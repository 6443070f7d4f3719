// Package util holds small helpers shared across layers.
package util

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail hides most of an address for logs: "ada@example.com" becomes
// "a***@e***.com". Input without "@" is masked as a whole. Masking works on
// runes, so internationalized addresses stay valid UTF-8.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	i := strings.LastIndexByte(s, '@')
	if i <= 0 {
		if utf8.RuneCountInString(s) <= 3 {
			return "***"
		}
		last, _ := utf8.DecodeLastRuneInString(s)
		return firstRune(s) + "***" + string(last)
	}

	local, domain := s[:i], s[i+1:]
	local = firstRune(local) + "***"

	labels := strings.Split(domain, ".")
	if len(labels) > 1 && utf8.RuneCountInString(labels[0]) > 1 {
		labels[0] = firstRune(labels[0]) + "***"
	} else if len(labels) == 1 {
		labels[0] = "***"
	}
	return local + "@" + strings.Join(labels, ".")
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
