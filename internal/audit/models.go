package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategorySecurity covers sign-in, sign-out and session restore.
	CategorySecurity EventCategory = "security"

	// CategoryCompliance covers record submission: who collected what, when.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers degraded-mode events such as simulated verification.
	CategoryOperations EventCategory = "operations"
)

// Action names an audited operation.
type Action string

const (
	ActionSignedIn              Action = "signed_in"
	ActionSignInFailed          Action = "sign_in_failed"
	ActionSignedOut             Action = "signed_out"
	ActionSessionRestored       Action = "session_restored"
	ActionSessionDiscarded      Action = "session_discarded"
	ActionVerified              Action = "identity_verified"
	ActionVerificationSimulated Action = "identity_verification_simulated"
	ActionRecordSubmitted       Action = "record_submitted"
	ActionRecordRejected        Action = "record_rejected"
)

// Category returns the category an action belongs to.
func (a Action) Category() EventCategory {
	switch a {
	case ActionRecordSubmitted, ActionRecordRejected:
		return CategoryCompliance
	case ActionVerificationSimulated:
		return CategoryOperations
	default:
		return CategorySecurity
	}
}

// Event is emitted by the gateway for every audited action. Subject never
// carries a raw identity number, only its redacted form or a record id.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Operator  string        `json:"operator,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}
