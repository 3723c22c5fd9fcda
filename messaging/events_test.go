package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


func TestRequestStatusChangedEvent_RoutingKeys(t *testing.T) {
	cases := map[string]string{
		"approved":  KeyRequestApproved,
		"completed": KeyRequestApproved,
		"denied":    KeyRequestDenied,
		"pending":   KeyRequestChanged,
		"reopened":  KeyRequestChanged,
	}
	for status, want := range cases {
		ev := RequestStatusChangedEvent{NewStatus: status}
		assert.Equal(t, want, ev.RoutingKey(), "status %s", status)
	}
}

func TestProofStatusChangedEvent_RoutingKeys(t *testing.T) {
	cases := map[string]string{
		"approved": KeyProofApproved,
		"denied":   KeyProofDenied,
		"pending":  KeyProofChanged,
	}
	for status, want := range cases {
		ev := ProofStatusChangedEvent{NewStatus: status}
		assert.Equal(t, want, ev.RoutingKey(), "status %s", status)
	}
}

func TestPasswordResetRequestedEvent_RoutingKey(t *testing.T) {
	assert.Equal(t, KeyPasswordResetRequested, PasswordResetRequestedEvent{}.RoutingKey())
}

// Timestamps serialize as RFC 3339 UTC so consumers in other services parse
// them without locale guessing.
func TestEventTimestampsSerializeUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)

	ev := ProofStatusChangedEvent{
		ParticipationID: "p1",
		OccurredAt:      time.Date(2025, 6, 1, 14, 30, 0, 0, loc).UTC(),
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "2025-06-01T12:30:00Z", decoded["occurred_at"])
}
