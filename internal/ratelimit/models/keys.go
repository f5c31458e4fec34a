package models

import "strings"

// KeyPrefix namespaces throttle counters by what they limit.
type KeyPrefix string

const (
	// KeyPrefixSubmission limits request submissions per origin.
	KeyPrefixSubmission KeyPrefix = "throttle:submission"
)

// Key is a throttle counter key.
type Key string

// NewKey builds the counter key for an origin.
func NewKey(prefix KeyPrefix, origin string) Key {
	return Key(string(prefix) + ":" + SanitizeKeySegment(origin))
}

func (k Key) String() string {
	return string(k)
}

// SanitizeKeySegment escapes delimiter characters in key segments so an
// origin containing ':' (IPv6) cannot collide with another bucket's key.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
