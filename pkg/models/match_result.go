package models

// MatchOutcome describes how the disambiguation policy resolved a secondary record
type MatchOutcome string

const (
	MatchOutcomeUnmatched         MatchOutcome = "unmatched"          // no candidate survived the filters
	MatchOutcomeUnique            MatchOutcome = "unique"             // exactly one address-level candidate
	MatchOutcomeResolved          MatchOutcome = "resolved"           // several candidates, at least one name match
	MatchOutcomeAmbiguousRejected MatchOutcome = "ambiguous_rejected" // several candidates, no name match
	MatchOutcomeNoCity            MatchOutcome = "no_city"            // secondary city absent
)

// MatchResultHeader is the output column order.
var MatchResultHeader = []string{
	"Entityname",
	"StreetAddress",
	"City",
	"Zip",
	"CorporateBusinessName",
	"CorporateAddress",
	"CorporateCity",
	"CorporateZip",
}

// MatchResult pairs one secondary record with one accepted primary record
type MatchResult struct {
	EntityName            string `json:"entity_name"`
	StreetAddress         string `json:"street_address"`
	City                  string `json:"city"`
	ZIP                   string `json:"zip"`
	CorporateBusinessName string `json:"corporate_business_name"`
	CorporateAddress      string `json:"corporate_address"`
	CorporateCity         string `json:"corporate_city"`
	CorporateZIP          string `json:"corporate_zip"`
}

// NewMatchResult builds the output row for an accepted (secondary, primary) pair.
func NewMatchResult(secondary *SecondaryRecord, primary *PrimaryRecord) MatchResult {
	return MatchResult{
		EntityName:            secondary.EntityName,
		StreetAddress:         secondary.StreetAddress,
		City:                  secondary.City,
		ZIP:                   secondary.ZIP,
		CorporateBusinessName: primary.BusinessName,
		CorporateAddress:      primary.Address,
		CorporateCity:         primary.City,
		CorporateZIP:          primary.ZIP,
	}
}

// Values returns the result's cells in MatchResultHeader order.
func (m MatchResult) Values() []string {
	return []string{
		m.EntityName,
		m.StreetAddress,
		m.City,
		m.ZIP,
		m.CorporateBusinessName,
		m.CorporateAddress,
		m.CorporateCity,
		m.CorporateZIP,
	}
}

// RecordMatch is the policy's decision for a single secondary record
type RecordMatch struct {
	Secondary  *SecondaryRecord `json:"secondary"`
	Candidates int              `json:"candidates"`
	Outcome    MatchOutcome     `json:"outcome"`
	Results    []MatchResult    `json:"results"`
}
