// Package address canonicalizes free-text street addresses so that the
// same property reported by different sources compares equal.
package address

import (
	"regexp"
	"strings"
)

// streetAbbr maps full street-type words to their standard abbreviations.
// Substitution is whole-word; already-abbreviated forms pass through.
var streetAbbr = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"road":      "rd",
	"drive":     "dr",
	"lane":      "ln",
	"parkway":   "pkwy",
	"court":     "ct",
	"place":     "pl",
	"circle":    "cir",
}

// directionals are bare single-letter direction tokens dropped during
// normalization ("123 N Main St" and "123 Main St" refer to the same
// parcel in every source we ingest).
var directionals = map[string]bool{
	"n": true, "s": true, "e": true, "w": true,
}

var (
	unitRe  = regexp.MustCompile(`\b(?:suite|ste|unit|apt)\b\.?\s*[\w-]*`)
	hashRe  = regexp.MustCompile(`#\s*[\w-]+`)
	punctRe = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Normalize lowercases, strips unit designators and punctuation, expands
// street-type words to standard abbreviations, and collapses whitespace.
// Pure and idempotent; an empty input yields an empty output.
func Normalize(addr string) string {
	s := strings.ToLower(strings.TrimSpace(addr))
	if s == "" {
		return ""
	}

	s = hashRe.ReplaceAllString(s, " ")
	s = unitRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")

	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if directionals[f] {
			continue
		}
		if abbr, ok := streetAbbr[f]; ok {
			f = abbr
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
