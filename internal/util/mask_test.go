package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"Ada@Example.com", "a***@e***.com"},
		{"a@b.co", "a***@b.co"},
		{"x@localhost", "x***@***"},
		{"abc", "***"},
		{"abcdef", "a***f"},
		{"émile@exämple.de", "é***@e***.de"},
		{"ñandú@ünïcode.org", "ñ***@ü***.org"},
		{"żółwik", "ż***k"},
		{"日本語", "***"},
	}
	for _, c := range cases {
		got := MaskEmail(c.in)
		assert.Equal(t, c.want, got, c.in)
		assert.True(t, utf8.ValidString(got), c.in)
	}
}
