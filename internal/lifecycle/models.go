package lifecycle

import (
	"fmt"
	"time"
)

// SubmitResult is returned by Submit. Token is the verification token that
// was emailed; it must never be shown to the caller of the HTTP endpoint.
type SubmitResult struct {
	Identity string
	Token    string
	// NewRequester is true when the identity was added to the requesters list.
	NewRequester bool
}

// VerifyResult carries the session granted by a verification link.
type VerifyResult struct {
	Identity  string
	Session   string
	ExpiresAt time.Time
}

// LocalityResult describes an accepted locality choice.
type LocalityResult struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Context     string   `json:"context"`
	Label       string   `json:"label"`
	PostalCodes []string `json:"postal_codes"`
	ChangeCount int64    `json:"change_count"`
}

// LocalityView is the step-two state of an authenticated requester.
type LocalityView struct {
	Identity string `json:"email"`
	Code     string `json:"code,omitempty"`
	Label    string `json:"commune,omitempty"`
	// ChangesLeft is how many more choices will be accepted.
	ChangesLeft int64 `json:"changes_left"`
}

// CancelResult reports what a cancellation did.
type CancelResult struct {
	Identity        string `json:"request"`
	Offer           string `json:"offer"`
	LocalityDeleted bool   `json:"deleted"`
}

// ThrottledError is the cause of a CodeThrottled error and tells the caller
// when to retry.
type ThrottledError struct {
	RetryAfter int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("retry after %ds", e.RetryAfter)
}
