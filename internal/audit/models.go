package audit

import "time"

// Action names an audited lifecycle event.
type Action string

const (
	ActionSubmitted             Action = "request_submitted"
	ActionVerified              Action = "email_verified"
	ActionLocalityChosen        Action = "locality_chosen"
	ActionChangeLimitReached    Action = "locality_change_limit_reached"
	ActionConfirmationAcked     Action = "confirmation_acknowledged"
	ActionCancelled             Action = "match_cancelled"
	ActionConsularListRequested Action = "consular_list_requested"
	ActionThrottled             Action = "submission_throttled"
	ActionThrottleBypassed      Action = "throttle_allowlist_bypass"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// Subject is the requester identity, or the origin for throttle events.
	Subject   string `json:"subject,omitempty"`
	Offer     string `json:"offer,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
