// Package locality resolves free-text locality queries to administrative
// areas and persists the metadata of chosen localities.
package locality

import (
	"regexp"
	"slices"
	"strings"
)

// Candidate is one geocoding result.
type Candidate struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Context    string `json:"context"`
	PostalCode string `json:"postal_code"`
}

// Metadata is what matching needs to know about a chosen locality: its
// display fields and every postal code the geocoder returned for the query.
type Metadata struct {
	Name        string   `json:"name"`
	Context     string   `json:"context"`
	PostalCodes []string `json:"zipcodes"`
}

// inseeCode matches a commune code: five digits, or 2A/2B followed by three
// digits for Corsica.
var inseeCode = regexp.MustCompile(`^(\d{5}|2[AaBb]\d{3})$`)

// LooksLikeCode reports whether query is shaped like a commune code.
func LooksLikeCode(query string) bool {
	return inseeCode.MatchString(query)
}

// postalCodes trims codes and drops blanks and repeats, keeping the
// geocoder's order.
func postalCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
