package tabular

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// ColumnMapping describes the layout of both sources. It is loaded from YAML; anything the
// file leaves out keeps its default.
//
//	primary:
//	  business_name: Company
//	  zip: Postal Code
//	secondary:
//	  city: Town
//	normalizers: [trim, collapse_whitespace]
type ColumnMapping struct {
	Primary     PrimaryColumns   `yaml:"primary"`
	Secondary   SecondaryColumns `yaml:"secondary"`
	Normalizers []string         `yaml:"normalizers"`
}

// DefaultColumnMapping returns the default headers and the trim normalizer
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Primary:     DefaultPrimaryColumns(),
		Secondary:   DefaultSecondaryColumns(),
		Normalizers: DefaultReadOptions().Normalizers,
	}
}

// LoadColumnMapping reads a YAML column mapping from path
func LoadColumnMapping(path string) (ColumnMapping, error) {
	mapping := DefaultColumnMapping()

	data, err := os.ReadFile(path)
	if err != nil {
		return mapping, fmt.Errorf("read column mapping: %w", err)
	}
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return mapping, fmt.Errorf("parse column mapping %s: %w", path, err)
	}
	if err := mapping.Validate(); err != nil {
		return mapping, fmt.Errorf("column mapping %s: %w", path, err)
	}
	return mapping, nil
}

// Validate checks that every required column is named and every normalizer exists
func (m ColumnMapping) Validate() error {
	for _, cols := range [][]column{m.Primary.columns(), m.Secondary.columns()} {
		for _, col := range cols {
			if col.required && col.name == "" {
				return errors.New("required column name is empty")
			}
		}
	}
	return normalizers.Validate(m.Normalizers...)
}
