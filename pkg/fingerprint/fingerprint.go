package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Results creates a deterministic fingerprint for an ordered result set.
// Two runs that emit the same rows in the same order produce the same fingerprint.
func Results(results []models.MatchResult) string {
	hash := sha256.New()
	for i := range results {
		hash.Write([]byte(Canonical(results[i].Values())))
		hash.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hash.Sum(nil))
}

// Canonical renders values as a JSON array so that cell boundaries survive hashing
func Canonical(values []string) string {
	b, _ := json.Marshal(values)
	return string(b)
}
