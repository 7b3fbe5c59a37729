package poker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomCode_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := randomCode()
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q in %s", r, code)
		}
		assert.True(t, validCode(code))
	}
}

func TestValidCode(t *testing.T) {
	for _, code := range []string{"AB12", "ZZZZ", "0000"} {
		assert.True(t, validCode(code), code)
	}
	for _, code := range []string{"", "ABC", "ABCDE", "ab12", "AB-1", "A 12"} {
		assert.False(t, validCode(code), code)
	}
}
