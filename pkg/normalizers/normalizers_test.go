package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	t.Run("trim strips whitespace and BOM", func(t *testing.T) {
		assert.Equal(t, "Business Name", Trim("\ufeff  Business Name \t"))
		assert.Equal(t, "", Trim("   "))
	})

	t.Run("casefold equates case variants", func(t *testing.T) {
		assert.Equal(t, CaseFold("SPRINGFIELD"), CaseFold("Springfield"))
		assert.Equal(t, CaseFold("\u00c9COLE"), CaseFold("\u00e9cole"))
	})

	t.Run("nfc composes accents", func(t *testing.T) {
		decomposed := "Cafe\u0301"
		assert.Equal(t, "Caf\u00e9", NFC(decomposed))
	})

	t.Run("collapse whitespace", func(t *testing.T) {
		assert.Equal(t, " 123 Main St ", CollapseWhitespace("  123   Main\tSt  "))
	})
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "123 main st", ApplyChain("  123  MAIN St ", "trim", "collapse_whitespace", "lowercase"))

	t.Run("unknown normalizer leaves value unchanged", func(t *testing.T) {
		assert.Equal(t, "Value", Apply("Value", "does_not_exist"))
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("trim", "nfc"))

	err := Validate("trim", "soundex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soundex")
}

func TestRegister(t *testing.T) {
	Register("test_reverse", func(s string) string {
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return string(r)
	})
	t.Cleanup(func() { delete(registry, "test_reverse") })

	require.NoError(t, Validate("trim", "test_reverse"))
	assert.Equal(t, "cba", ApplyChain(" abc ", "trim", "test_reverse"))
	assert.Contains(t, Names(), "test_reverse")
}
