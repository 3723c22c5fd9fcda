package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cleanup-platform/messaging"
	"cleanup-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hand-rolled fakes here: the pipeline runs its actions on goroutines, and
// these record calls under a lock instead of relying on mock call ordering.

type recordingNotifier struct {
	mu    sync.Mutex
	calls []NotificationRequest
	err   error
	panic bool
}

func (r *recordingNotifier) CreateOne(req NotificationRequest) (*models.Notification, error) {
	if r.panic {
		panic("notifier exploded")
	}
	r.mu.Lock()
	r.calls = append(r.calls, req)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &models.Notification{UserID: req.UserID, Title: req.Title}, nil
}

type recordingEvaluator struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (r *recordingEvaluator) EvaluateUser(userID string) ([]models.BadgeDefinition, error) {
	r.mu.Lock()
	r.users = append(r.users, userID)
	r.mu.Unlock()
	return nil, r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, ev messaging.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return r.err
}

func proofEvent(newStatus string) messaging.ProofStatusChangedEvent {
	return messaging.ProofStatusChangedEvent{
		ParticipationID: "p1",
		RequestID:       "r1",
		UserID:          "u1",
		UserName:        "Alice",
		UserEmail:       "alice@example.com",
		RequestTitle:    "Riverbank cleanup",
		OldStatus:       models.StatusPending,
		NewStatus:       newStatus,
		OccurredAt:      time.Now().UTC(),
	}
}

func TestProofStatusChanged_FiresAllThreeActions(t *testing.T) {
	nf := &recordingNotifier{}
	ev := &recordingEvaluator{}
	pub := &recordingPublisher{}

	p := NewSideEffectPipeline(nf, ev, pub)
	p.ProofStatusChanged(proofEvent(models.StatusApproved))
	p.Wait()

	require.Len(t, nf.calls, 1)
	assert.Equal(t, "u1", nf.calls[0].UserID)
	assert.Equal(t, models.NotifStatusChanged, nf.calls[0].Type)

	require.Len(t, ev.users, 1)
	assert.Equal(t, "u1", ev.users[0])

	require.Len(t, pub.events, 1)
	assert.Equal(t, messaging.KeyProofApproved, pub.events[0].RoutingKey())
}

// Forcing the notification write to fail must not stop badge re-evaluation or
// the event publish; the caller never sees any of it.
func TestProofStatusChanged_NotifierFailureIsolated(t *testing.T) {
	nf := &recordingNotifier{err: errors.New("insert failed")}
	ev := &recordingEvaluator{}
	pub := &recordingPublisher{}

	p := NewSideEffectPipeline(nf, ev, pub)
	p.ProofStatusChanged(proofEvent(models.StatusDenied))
	p.Wait()

	assert.Len(t, ev.users, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, messaging.KeyProofDenied, pub.events[0].RoutingKey())
}

func TestProofStatusChanged_NotifierPanicContained(t *testing.T) {
	nf := &recordingNotifier{panic: true}
	ev := &recordingEvaluator{}
	pub := &recordingPublisher{}

	p := NewSideEffectPipeline(nf, ev, pub)

	require.NotPanics(t, func() {
		p.ProofStatusChanged(proofEvent(models.StatusApproved))
		p.Wait()
	})

	assert.Len(t, ev.users, 1)
	assert.Len(t, pub.events, 1)
}

func TestProofStatusChanged_PublisherFailureIsolated(t *testing.T) {
	nf := &recordingNotifier{}
	ev := &recordingEvaluator{}
	pub := &recordingPublisher{err: &messaging.PublishError{RoutingKey: "proof.status.changed", Err: errors.New("broker down")}}

	p := NewSideEffectPipeline(nf, ev, pub)
	p.ProofStatusChanged(proofEvent("reopened"))
	p.Wait()

	assert.Len(t, nf.calls, 1)
	assert.Len(t, ev.users, 1)
}

func TestRequestStatusChanged_RoutingByOutcome(t *testing.T) {
	for status, want := range map[string]string{
		models.StatusApproved:  messaging.KeyRequestApproved,
		models.StatusCompleted: messaging.KeyRequestApproved,
		models.StatusDenied:    messaging.KeyRequestDenied,
		models.StatusPending:   messaging.KeyRequestChanged,
	} {
		pub := &recordingPublisher{}
		p := NewSideEffectPipeline(&recordingNotifier{}, &recordingEvaluator{}, pub)

		p.RequestStatusChanged(messaging.RequestStatusChangedEvent{
			RequestID: "r1", UserID: "u1", NewStatus: status, OccurredAt: time.Now().UTC(),
		})
		p.Wait()

		require.Len(t, pub.events, 1, "status %s", status)
		assert.Equal(t, want, pub.events[0].RoutingKey(), "status %s", status)
	}
}

func TestPasswordResetRequested_PublishesOnly(t *testing.T) {
	nf := &recordingNotifier{}
	ev := &recordingEvaluator{}
	pub := &recordingPublisher{}

	p := NewSideEffectPipeline(nf, ev, pub)
	p.PasswordResetRequested(messaging.PasswordResetRequestedEvent{
		UserID: "u1", UserEmail: "alice@example.com", ResetToken: "tok",
	})
	p.Wait()

	assert.Empty(t, nf.calls)
	assert.Empty(t, ev.users)
	require.Len(t, pub.events, 1)
	assert.Equal(t, messaging.KeyPasswordResetRequested, pub.events[0].RoutingKey())
}
