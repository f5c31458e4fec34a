package models

import "strings"

// RequestersKey is the list of every identity that ever submitted.
const RequestersKey = "requests:all"

// Per-identity keys. The suffixes are the stored schema and must not change.
const (
	suffixVerified = "valid"
	suffixChanges  = "changes"
	suffixLocality = "insee"
	suffixCreated  = "date"
	suffixLabel    = "commune"
	suffixFlags    = "posted"
	suffixMatch    = "match"
)

// SanitizeKeySegment escapes the key delimiter in user-controlled segments so
// an identity containing ':' cannot address another identity's keys.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

func identityKey(identity, suffix string) string {
	return "requests:" + SanitizeKeySegment(identity) + ":" + suffix
}

func VerifiedKey(identity string) string { return identityKey(identity, suffixVerified) }
func ChangesKey(identity string) string  { return identityKey(identity, suffixChanges) }
func LocalityKey(identity string) string { return identityKey(identity, suffixLocality) }
func CreatedKey(identity string) string  { return identityKey(identity, suffixCreated) }
func LabelKey(identity string) string    { return identityKey(identity, suffixLabel) }
func FlagsKey(identity string) string    { return identityKey(identity, suffixFlags) }

// MatchKey holds the matched proxy holder's identity. It is written and
// cleared by the matching collaborator, read here as a guard.
func MatchKey(identity string) string { return identityKey(identity, suffixMatch) }

// LockKey is the per-identity serialization key for locality changes.
func LockKey(identity string) string {
	return "requests:" + SanitizeKeySegment(identity)
}
