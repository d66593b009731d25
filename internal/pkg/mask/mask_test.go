package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"ab@example.com": "a***@example.com",
		"x@b.io":         "x***@b.io",
		"@b.io":          "***@b.io",
		"":               "invalid_email_format",
		"no-at-sign":     "incomplete_email",
		"a@b@c":          "incomplete_email",
	}
	for in, want := range cases {
		assert.Equal(t, want, Email(in), "input %q", in)
	}
}

func TestHash(t *testing.T) {
	assert.Equal(t, "0123456789...", Hash("0123456789abcdef"))
	assert.Equal(t, "abc", Hash("abc"))
}
