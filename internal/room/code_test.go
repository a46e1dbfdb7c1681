package room

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := generateCode(nil)
		require.Len(t, code, codeLength)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
	}
}

func TestGenerateCodeExcludesAmbiguousSymbols(t *testing.T) {
	for _, bad := range []string{"O", "0", "I", "1", "L", "S", "5"} {
		assert.NotContains(t, codeAlphabet, bad)
	}
	for i := 0; i < 200; i++ {
		code := generateCode(nil)
		for _, bad := range "O01ILS5" {
			assert.NotContains(t, code, string(bad))
		}
	}
}

func TestGenerateCodeAvoidsExisting(t *testing.T) {
	existing := make(map[string]*Room)
	for i := 0; i < 50; i++ {
		code := generateCode(existing)
		_, taken := existing[code]
		require.False(t, taken)
		existing[code] = &Room{Code: code}
	}
}

func TestGenerateCodeUppercaseOnly(t *testing.T) {
	code := generateCode(nil)
	assert.Equal(t, strings.ToUpper(code), code)
}
