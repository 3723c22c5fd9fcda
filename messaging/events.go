package messaging

import "time"

// Routing keys follow <subject>.<aspect>.<outcome>. Every event type owns a
// fixed set of keys and every queue binds to exactly the subset it handles.
const (
	KeyRequestApproved = "request.status.approved"
	KeyRequestDenied   = "request.status.denied"
	KeyRequestChanged  = "request.status.changed"

	KeyProofApproved = "proof.status.approved"
	KeyProofDenied   = "proof.status.denied"
	KeyProofChanged  = "proof.status.changed"

	KeyPasswordResetRequested = "password.reset.requested"
)

// Event is a serializable domain fact. Payloads are denormalized at publish
// time so consumers never need a database lookup.
type Event interface {
	RoutingKey() string
	Type() string
}

// outcomeKey picks the routing key for a status transition.
func outcomeKey(newStatus, approved, denied, changed string) string {
	switch newStatus {
	case "approved", "completed":
		return approved
	case "denied":
		return denied
	default:
		return changed
	}
}

// RequestStatusChangedEvent: a cleanup request moved between statuses.
type RequestStatusChangedEvent struct {
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	RequestTitle string    `json:"request_title"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ChangedBy    *string   `json:"changed_by,omitempty"` // nil for system transitions
	RewardPoints int64     `json:"reward_points"`
	RewardAmount float64   `json:"reward_amount"`
	Notes        string    `json:"notes,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e RequestStatusChangedEvent) RoutingKey() string {
	return outcomeKey(e.NewStatus, KeyRequestApproved, KeyRequestDenied, KeyRequestChanged)
}

func (e RequestStatusChangedEvent) Type() string { return "request.status.changed" }

// ProofStatusChangedEvent: an admin reviewed a participation's proof of activity.
type ProofStatusChangedEvent struct {
	ParticipationID string    `json:"participation_id"`
	RequestID       string    `json:"request_id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	RequestTitle    string    `json:"request_title"`
	OldStatus       string    `json:"old_status"`
	NewStatus       string    `json:"new_status"`
	ChangedBy       *string   `json:"changed_by,omitempty"`
	RewardPoints    int64     `json:"reward_points"`
	RewardAmount    float64   `json:"reward_amount"`
	Notes           string    `json:"notes,omitempty"`
	ProofPhotoURL   string    `json:"proof_photo_url,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (e ProofStatusChangedEvent) RoutingKey() string {
	return outcomeKey(e.NewStatus, KeyProofApproved, KeyProofDenied, KeyProofChanged)
}

func (e ProofStatusChangedEvent) Type() string { return "proof.status.changed" }

// PasswordResetRequestedEvent: a user asked for a password reset mail.
type PasswordResetRequestedEvent struct {
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PasswordResetRequestedEvent) RoutingKey() string { return KeyPasswordResetRequested }

func (e PasswordResetRequestedEvent) Type() string { return "password.reset.requested" }
