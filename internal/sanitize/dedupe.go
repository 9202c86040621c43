package sanitize

import (
	"strings"

	"jobscout/pkg/models"
)

// diacriticFolds maps accented Latin runes onto their ASCII base so
// "Zürich" and "Zurich" produce the same dedup key
var diacriticFolds = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o', 'ø': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y', 'ÿ': 'y',
	'ß': 's',
}

// DedupeKey computes the normalized identity of a listing from
// company, title and location: lower-cased, diacritics folded,
// everything non-alphanumeric stripped.
func DedupeKey(company, title, location string) string {
	var b strings.Builder
	for _, part := range []string{company, title, location} {
		for _, r := range strings.ToLower(part) {
			if folded, ok := diacriticFolds[r]; ok {
				r = folded
			}
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		b.WriteByte('|')
	}
	return b.String()
}

// ListingKey is DedupeKey applied to a listing
func ListingKey(listing models.JobListing) string {
	return DedupeKey(listing.Company, listing.Title, listing.Location)
}

// DedupeWithinRun collapses duplicates inside one scrape run, keeping
// the first occurrence. Returns the kept set and the duplicate count.
func DedupeWithinRun(listings []models.JobListing) ([]models.JobListing, int) {
	seen := make(map[string]bool, len(listings))
	kept := make([]models.JobListing, 0, len(listings))
	duplicates := 0
	for _, listing := range listings {
		key := ListingKey(listing)
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true
		kept = append(kept, listing)
	}
	return kept, duplicates
}
