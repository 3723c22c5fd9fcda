// workers/event_consumer_worker.go
package workers

import (
	"context"
	"fmt"
	"log"

	"cleanup-platform/messaging"
	"cleanup-platform/services"
)

// Queue names. One durable queue per event family; each binds to exactly the
// routing keys of its family.
const (
	RequestStatusMailQueue = "cleanup.request-status-mail"
	ProofStatusMailQueue   = "cleanup.proof-status-mail"
	PasswordResetMailQueue = "cleanup.password-reset-mail"
)

// EventConsumerWorker is the consumer-side process: it turns durable queue
// messages back into mail sends. Payloads arrive fully denormalized, so no
// handler touches the database.
type EventConsumerWorker struct {
	consumer *messaging.Consumer
	mailer   services.Mailer
	done     chan struct{}
}

func NewEventConsumerWorker(broker *messaging.Broker, mailer services.Mailer) *EventConsumerWorker {
	w := &EventConsumerWorker{mailer: mailer, done: make(chan struct{})}

	w.consumer = messaging.NewConsumer(broker, []messaging.QueueSpec{
		{
			Queue: RequestStatusMailQueue,
			Bindings: []string{
				messaging.KeyRequestApproved,
				messaging.KeyRequestDenied,
				messaging.KeyRequestChanged,
			},
			Handler: messaging.Typed(w.onRequestStatusChanged),
		},
		{
			Queue: ProofStatusMailQueue,
			Bindings: []string{
				messaging.KeyProofApproved,
				messaging.KeyProofDenied,
				messaging.KeyProofChanged,
			},
			Handler: messaging.Typed(w.onProofStatusChanged),
		},
		{
			Queue:    PasswordResetMailQueue,
			Bindings: []string{messaging.KeyPasswordResetRequested},
			Handler:  messaging.Typed(w.onPasswordResetRequested),
		},
	})

	return w
}

// Start runs the consumer until ctx is cancelled.
func (w *EventConsumerWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Event Consumer Worker (broker → mail)…")
	go func() {
		defer close(w.done)
		if err := w.consumer.Run(ctx); err != nil {
			log.Printf("❌ Event consumer stopped with error: %v", err)
		}
	}()
}

// Wait blocks until all consumer registrations are cancelled and their
// channels closed; call it before closing the broker connection.
func (w *EventConsumerWorker) Wait() {
	<-w.done
}

func (w *EventConsumerWorker) onRequestStatusChanged(ctx context.Context, ev messaging.RequestStatusChangedEvent) error {
	if ev.UserEmail == "" {
		return messaging.Permanent(fmt.Errorf("request %s event has no recipient address", ev.RequestID))
	}

	subject := fmt.Sprintf("Your cleanup request %q is now %s", ev.RequestTitle, ev.NewStatus)
	body := fmt.Sprintf("Hi %s,\n\nyour cleanup request %q changed from %s to %s.\n",
		ev.UserName, ev.RequestTitle, ev.OldStatus, ev.NewStatus)
	if ev.RewardPoints > 0 || ev.RewardAmount > 0 {
		body += fmt.Sprintf("\nYou earned %d points and a reward of %.2f.\n", ev.RewardPoints, ev.RewardAmount)
	}
	if ev.Notes != "" {
		body += "\nReviewer note: " + ev.Notes + "\n"
	}

	// Mail relay failures are transient: return them plain so the message is
	// redelivered.
	return w.mailer.SendEmail(ev.UserEmail, subject, body)
}

func (w *EventConsumerWorker) onProofStatusChanged(ctx context.Context, ev messaging.ProofStatusChangedEvent) error {
	if ev.UserEmail == "" {
		return messaging.Permanent(fmt.Errorf("participation %s event has no recipient address", ev.ParticipationID))
	}

	subject := fmt.Sprintf("Your proof for %q was %s", ev.RequestTitle, ev.NewStatus)
	body := fmt.Sprintf("Hi %s,\n\nyour proof of activity for %q changed from %s to %s.\n",
		ev.UserName, ev.RequestTitle, ev.OldStatus, ev.NewStatus)
	if ev.RewardPoints > 0 || ev.RewardAmount > 0 {
		body += fmt.Sprintf("\nYou earned %d points and a reward of %.2f.\n", ev.RewardPoints, ev.RewardAmount)
	}
	if ev.ProofPhotoURL != "" {
		body += "\nReviewed photo: " + ev.ProofPhotoURL + "\n"
	}
	if ev.Notes != "" {
		body += "\nReviewer note: " + ev.Notes + "\n"
	}

	return w.mailer.SendEmail(ev.UserEmail, subject, body)
}

func (w *EventConsumerWorker) onPasswordResetRequested(ctx context.Context, ev messaging.PasswordResetRequestedEvent) error {
	if ev.UserEmail == "" {
		return messaging.Permanent(fmt.Errorf("reset event for user %s has no recipient address", ev.UserID))
	}
	if ev.ResetToken == "" {
		return messaging.Permanent(fmt.Errorf("reset event for user %s has no token", ev.UserID))
	}

	body := fmt.Sprintf("Hi %s,\n\nuse this code to reset your password: %s\nIt expires at %s.\n",
		ev.UserName, ev.ResetToken, ev.ExpiresAt.Format("15:04 on Jan 2"))

	return w.mailer.SendEmail(ev.UserEmail, "Reset your password", body)
}
