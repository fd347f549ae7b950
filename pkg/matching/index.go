package matching

import (
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// indexKey is the exact-match part of the filter: ZIP as ingested and the lowercased city
type indexKey struct {
	zip  string
	city string
}

// Index buckets primary records by (ZIP, city) so the exact filter stages become a single
// lookup. Records without a ZIP or city can never pass those stages and are not indexed.
// An Index is immutable after construction and safe for concurrent reads.
type Index struct {
	buckets map[indexKey][]*models.PrimaryRecord
	indexed int
	total   int
}

// NewIndex builds an index over primaries. Bucket order follows the order of primaries.
func NewIndex(primaries []models.PrimaryRecord) *Index {
	idx := &Index{
		buckets: make(map[indexKey][]*models.PrimaryRecord),
		total:   len(primaries),
	}

	for i := range primaries {
		p := &primaries[i]
		if p.ZIP == "" || p.City == "" {
			continue
		}
		key := indexKey{zip: p.ZIP, city: cityKey(p.City)}
		idx.buckets[key] = append(idx.buckets[key], p)
		idx.indexed++
	}

	return idx
}

// Lookup returns the primary records whose ZIP equals zip exactly and whose city is
// equal to city after lowercasing. Absent zip or city yields nothing.
func (i *Index) Lookup(zip, city string) []*models.PrimaryRecord {
	if zip == "" || city == "" {
		return nil
	}
	return i.buckets[indexKey{zip: zip, city: cityKey(city)}]
}

// cityKey composes accents and lowercases rune by rune. Unlike full case folding it keeps
// "STRASSE" and "Straße" apart.
func cityKey(city string) string {
	return normalizers.ApplyChain(city, "nfc", "lowercase")
}

// Len returns the number of indexed primary records
func (i *Index) Len() int {
	return i.indexed
}

// Skipped returns the number of primary records left out for lacking a ZIP or city
func (i *Index) Skipped() int {
	return i.total - i.indexed
}

// Buckets returns the number of distinct (ZIP, city) keys
func (i *Index) Buckets() int {
	return len(i.buckets)
}
