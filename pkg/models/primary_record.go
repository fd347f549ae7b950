package models

// PrimaryRecord is a row of the reference registry. Empty fields are treated as absent.
type PrimaryRecord struct {
	Row          int    `json:"row"`
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZIP          string `json:"zip"`
}
