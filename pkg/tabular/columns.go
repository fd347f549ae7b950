package tabular

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// PrimaryColumns maps source header names onto PrimaryRecord fields
type PrimaryColumns struct {
	BusinessName string `yaml:"business_name"`
	Address      string `yaml:"address"`
	City         string `yaml:"city"`
	State        string `yaml:"state"`
	ZIP          string `yaml:"zip"`
}

// DefaultPrimaryColumns returns the business registry's header names
func DefaultPrimaryColumns() PrimaryColumns {
	return PrimaryColumns{
		BusinessName: "Business Name",
		Address:      "Physical Address",
		City:         "Physical City",
		State:        "Physical State",
		ZIP:          "Physical ZIP",
	}
}

func (c PrimaryColumns) columns() []column {
	return []column{
		{name: c.BusinessName, required: true},
		{name: c.Address, required: true},
		{name: c.City, required: true},
		{name: c.State},
		{name: c.ZIP, required: true},
	}
}

// SecondaryColumns maps source header names onto SecondaryRecord fields
type SecondaryColumns struct {
	EntityName    string `yaml:"entity_name"`
	Address       string `yaml:"address"`
	StreetAddress string `yaml:"street_address"`
	City          string `yaml:"city"`
	ZIP           string `yaml:"zip"`
}

// DefaultSecondaryColumns returns the entity list's header names
func DefaultSecondaryColumns() SecondaryColumns {
	return SecondaryColumns{
		EntityName:    "Entity Name",
		Address:       "Physical Address",
		StreetAddress: "STREET ADDRESS",
		City:          "CITY",
		ZIP:           "ZIP",
	}
}

func (c SecondaryColumns) columns() []column {
	return []column{
		{name: c.EntityName, required: true},
		{name: c.Address},
		{name: c.StreetAddress, required: true},
		{name: c.City, required: true},
		{name: c.ZIP, required: true},
	}
}

type column struct {
	name     string
	required bool
}

// resolveColumns returns, for each wanted column, its position in header or -1 when an
// optional column is absent. Names match exactly first, then case-insensitively.
func resolveColumns(header []string, wanted []column) ([]int, error) {
	cleaned := make([]string, len(header))
	for i, cell := range header {
		cleaned[i] = normalizers.Trim(cell)
	}

	positions := make([]int, len(wanted))
	var missing []string
	for i, col := range wanted {
		positions[i] = findColumn(cleaned, col.name)
		if positions[i] < 0 && col.required {
			missing = append(missing, col.name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return positions, nil
}

func findColumn(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
