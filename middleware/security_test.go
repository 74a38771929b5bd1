package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+14155550123"))
	assert.True(t, ValidatePhoneNumber("+91 98765 43210"))
	assert.True(t, ValidatePhoneNumber("+1 (415) 555-0123"))

	assert.False(t, ValidatePhoneNumber("14155550123"))   // missing +
	assert.False(t, ValidatePhoneNumber("+1415555"))      // too short
	assert.False(t, ValidatePhoneNumber("+1415555012345678")) // too long
	assert.False(t, ValidatePhoneNumber("+1415abc0123"))
	assert.False(t, ValidatePhoneNumber(""))
}

func TestValidatePasswordStrength(t *testing.T) {
	ok, errs := ValidatePasswordStrength("Str0ngPass")
	assert.True(t, ok)
	assert.Empty(t, errs)

	ok, errs = ValidatePasswordStrength("short1A")
	assert.False(t, ok)
	assert.NotEmpty(t, errs)

	ok, _ = ValidatePasswordStrength("alllowercase1")
	assert.False(t, ok)

	ok, _ = ValidatePasswordStrength("NoDigitsHere")
	assert.False(t, ok)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;", SanitizeInput("<script>"))
	assert.Equal(t, "plain text", SanitizeInput("  plain text  "))
	assert.Equal(t, "&amp;&quot;&#x27;", SanitizeInput(`&"'`))
}
