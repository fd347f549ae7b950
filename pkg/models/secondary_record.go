package models

// SecondaryRecord is a row of the dataset being resolved against the primary registry.
type SecondaryRecord struct {
	Row           int    `json:"row"`
	EntityName    string `json:"entity_name"`
	Address       string `json:"address"` // carried through ingestion, not used for matching
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	ZIP           string `json:"zip"`
}
