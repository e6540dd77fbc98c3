// Package match decides whether two permit records describe the same
// underlying project, using text similarity and geographic proximity.
package match

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/sells-group/permit-leads/internal/address"
	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/model"
)

// Matcher applies the pairwise duplicate decision rule.
type Matcher struct {
	cfg config.DedupeConfig
}

// NewMatcher creates a Matcher with the given dedupe config.
func NewMatcher(cfg config.DedupeConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// DefaultDedupeConfig returns the production thresholds.
func DefaultDedupeConfig() config.DedupeConfig {
	return config.DedupeConfig{
		StrictThreshold: 90,
		LooseThreshold:  85,
		ShortAddressLen: 20,
		ProximityMeters: 50,
		MergeBonus:      15,
		Workers:         1,
	}
}

// TextSimilarity converts the Levenshtein distance between two normalized
// address strings into a similarity percentage. Two empty strings are
// defined as identical (100).
func TextSimilarity(a, b string) int {
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// AreDuplicates reports whether two records describe the same project.
// The decision is symmetric and a record is never a duplicate of itself.
//
//  1. Records from different cities (or the same id) never match.
//  2. Records within the proximity cutoff are the same physical property
//     regardless of how the sources spelled the address.
//  3. Otherwise the normalized addresses must clear the similarity bar:
//     the strict threshold when the shorter raw address is short, the
//     loose threshold otherwise.
func (m *Matcher) AreDuplicates(a, b *model.Record) bool {
	if a.ID == b.ID || a.City != b.City {
		return false
	}

	if a.HasCoordinates() && b.HasCoordinates() {
		if HaversineMeters(*a.Coordinates, *b.Coordinates) <= m.cfg.ProximityMeters {
			return true
		}
	}

	similarity := TextSimilarity(address.Normalize(a.Address), address.Normalize(b.Address))

	shorter := utf8.RuneCountInString(a.Address)
	if l := utf8.RuneCountInString(b.Address); l < shorter {
		shorter = l
	}
	threshold := m.cfg.LooseThreshold
	if shorter < m.cfg.ShortAddressLen {
		threshold = m.cfg.StrictThreshold
	}
	return similarity >= threshold
}
