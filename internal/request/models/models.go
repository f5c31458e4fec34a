package models

import (
	"time"
)

// MaxLocalityChanges is the default cap on accepted locality selections.
const MaxLocalityChanges int64 = 3

// VerificationStatus is the tri-state of the verified flag.
type VerificationStatus int

const (
	// VerificationAbsent: the identity never submitted.
	VerificationAbsent VerificationStatus = iota
	// VerificationPending: a verification link was sent and not yet opened.
	VerificationPending
	// VerificationVerified: a verification link was opened.
	VerificationVerified
)

func (s VerificationStatus) String() string {
	switch s {
	case VerificationPending:
		return "pending"
	case VerificationVerified:
		return "verified"
	default:
		return "absent"
	}
}

// Verification is the stored verified flag of a request.
type Verification struct {
	Status     VerificationStatus
	VerifiedAt *time.Time
}

// StatusFlags is a bitmask of independent completion events.
type StatusFlags int64

const (
	// FlagConfirmationAcknowledged: the requester opened the confirmation link.
	FlagConfirmationAcknowledged StatusFlags = 1 << iota
)

// Has reports whether every bit of flag is set.
func (f StatusFlags) Has(flag StatusFlags) bool {
	return f&flag == flag
}

// Record is the per-identity request aggregate. Locality metadata (name,
// context, postal codes) is owned by the locality store and referenced here
// by code; Label is the display string saved alongside the code.
type Record struct {
	Identity      string
	Verification  Verification
	LocalityCode  string
	LocalityLabel string
	ChangeCount   int64
	CreatedAt     *time.Time
	Flags         StatusFlags
	MatchedOffer  string
}

// IsMatched reports whether a proxy holder is linked to this request.
func (r *Record) IsMatched() bool {
	return r.MatchedOffer != ""
}

// State is the lifecycle stage derived from the stored fields.
type State string

const (
	StateNew            State = "new"
	StateSubmitted      State = "submitted"
	StateVerified       State = "verified"
	StateLocalityChosen State = "locality_chosen"
	StateMatched        State = "matched"
	StateConfirmed      State = "confirmed"
)

// State derives the lifecycle stage. Cancellation clears the match, so a
// cancelled request reads as locality_chosen again (or verified when the
// locality was deleted on opt-out).
func (r *Record) State() State {
	switch {
	case r.IsMatched() && r.Flags.Has(FlagConfirmationAcknowledged):
		return StateConfirmed
	case r.IsMatched():
		return StateMatched
	case r.LocalityCode != "":
		return StateLocalityChosen
	case r.Verification.Status == VerificationVerified:
		return StateVerified
	case r.Verification.Status == VerificationPending:
		return StateSubmitted
	default:
		return StateNew
	}
}

// ChangeAllowed reports whether a post-increment change counter is within cap.
func ChangeAllowed(postIncrement, limit int64) bool {
	return postIncrement <= limit
}

// LocalityLabel formats the display label stored with a locality choice.
func LocalityLabel(name, context string) string {
	if context == "" {
		return name
	}
	return name + " (" + context + ")"
}
