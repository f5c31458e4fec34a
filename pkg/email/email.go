// Package email holds helpers for the email addresses used as requester
// identities.
package email

import (
	"strings"
	"unicode"
)

// Normalize trims surrounding whitespace. Case is preserved: the address is
// an identity key and the local part is case-sensitive.
func Normalize(email string) string {
	return strings.TrimSpace(email)
}

// GreetingName guesses a first name from the local part for mail greetings:
// "jean.dupont@x.fr" gives "Jean". Sub-addressing after '+' is ignored.
// It returns "" when nothing usable is left, and callers then greet without
// a name.
func GreetingName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local, _, _ = strings.Cut(local, "+")

	first, _, _ := strings.Cut(local, ".")
	first, _, _ = strings.Cut(first, "_")
	if first == "" || strings.ContainsFunc(first, unicode.IsDigit) {
		return ""
	}

	runes := []rune(strings.ToLower(first))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
