package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadColumnMapping(t *testing.T) {
	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := writeFile(t, "columns.yaml", `
primary:
  business_name: Company
  zip: Postal Code
secondary:
  city: Town
normalizers: [trim, collapse_whitespace]
`)
		mapping, err := LoadColumnMapping(path)
		require.NoError(t, err)

		assert.Equal(t, "Company", mapping.Primary.BusinessName)
		assert.Equal(t, "Postal Code", mapping.Primary.ZIP)
		assert.Equal(t, "Physical Address", mapping.Primary.Address)
		assert.Equal(t, "Town", mapping.Secondary.City)
		assert.Equal(t, "STREET ADDRESS", mapping.Secondary.StreetAddress)
		assert.Equal(t, []string{"trim", "collapse_whitespace"}, mapping.Normalizers)
	})

	t.Run("empty file is the default mapping", func(t *testing.T) {
		mapping, err := LoadColumnMapping(writeFile(t, "columns.yaml", ""))
		require.NoError(t, err)
		assert.Equal(t, DefaultColumnMapping(), mapping)
	})

	t.Run("unknown normalizer", func(t *testing.T) {
		_, err := LoadColumnMapping(writeFile(t, "columns.yaml", "normalizers: [soundex]\n"))
		assert.ErrorContains(t, err, "unknown normalizer")
	})

	t.Run("blank required column", func(t *testing.T) {
		_, err := LoadColumnMapping(writeFile(t, "columns.yaml", "secondary:\n  zip: \"\"\n"))
		assert.ErrorContains(t, err, "required column name is empty")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadColumnMapping(writeFile(t, "columns.yaml", "primary: [unterminated\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadColumnMapping(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
