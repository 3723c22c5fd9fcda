package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cleanup-platform/messaging"
	"cleanup-platform/models"
)

// EventPublisher is the broker gateway as the pipeline sees it.
type EventPublisher interface {
	Publish(ctx context.Context, ev messaging.Event) error
}

// BadgeEvaluator is the evaluation engine as the pipeline sees it.
type BadgeEvaluator interface {
	EvaluateUser(userID string) ([]models.BadgeDefinition, error)
}

// publishTimeout bounds broker I/O for detached publishes.
const publishTimeout = 10 * time.Second

// SideEffectPipeline decouples the reactions to a status change from the write
// that caused it. Each of the three actions (notify, re-evaluate badges,
// publish event) runs as its own supervised task: any may fail, none can fail
// the others, and none can fail the already-committed write.
type SideEffectPipeline struct {
	Notify    AwardNotifier
	Badges    BadgeEvaluator
	Publisher EventPublisher

	wg sync.WaitGroup
}

func NewSideEffectPipeline(notify AwardNotifier, badges BadgeEvaluator, publisher EventPublisher) *SideEffectPipeline {
	return &SideEffectPipeline{Notify: notify, Badges: badges, Publisher: publisher}
}

// RequestStatusChanged fires the three side effects for a cleanup request
// transition. The triggering write has committed before this is called.
func (p *SideEffectPipeline) RequestStatusChanged(ev messaging.RequestStatusChangedEvent) {
	p.dispatch("request-notification", func() error {
		_, err := p.Notify.CreateOne(NotificationRequest{
			UserID:  ev.UserID,
			Type:    models.NotifStatusChanged,
			Title:   statusTitle("request", ev.RequestTitle, ev.NewStatus),
			Message: statusMessage(ev.NewStatus, ev.Notes, ev.RewardPoints, ev.RewardAmount),
		})
		return err
	})

	p.dispatch("request-badge-evaluation", func() error {
		_, err := p.Badges.EvaluateUser(ev.UserID)
		return err
	})

	p.dispatch("request-event-publish", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return p.Publisher.Publish(ctx, ev)
	})
}

// ProofStatusChanged fires the three side effects for a participation review.
func (p *SideEffectPipeline) ProofStatusChanged(ev messaging.ProofStatusChangedEvent) {
	p.dispatch("proof-notification", func() error {
		_, err := p.Notify.CreateOne(NotificationRequest{
			UserID:  ev.UserID,
			Type:    models.NotifStatusChanged,
			Title:   statusTitle("proof", ev.RequestTitle, ev.NewStatus),
			Message: statusMessage(ev.NewStatus, ev.Notes, ev.RewardPoints, ev.RewardAmount),
		})
		return err
	})

	p.dispatch("proof-badge-evaluation", func() error {
		_, err := p.Badges.EvaluateUser(ev.UserID)
		return err
	})

	p.dispatch("proof-event-publish", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return p.Publisher.Publish(ctx, ev)
	})
}

// PasswordResetRequested has a single side effect: the event itself.
func (p *SideEffectPipeline) PasswordResetRequested(ev messaging.PasswordResetRequestedEvent) {
	p.dispatch("password-reset-publish", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return p.Publisher.Publish(ctx, ev)
	})
}

// dispatch runs fn detached. Errors and panics go to the log, never to the
// caller: the triggering action already succeeded from its caller's view.
func (p *SideEffectPipeline) dispatch(name string, fn func() error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[SideEffects] ⚠️ %s panicked: %v", name, r)
			}
		}()
		if err := fn(); err != nil {
			log.Printf("[SideEffects] %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until all dispatched side effects finish. Called on shutdown so
// in-flight tasks drain before broker and database close.
func (p *SideEffectPipeline) Wait() {
	p.wg.Wait()
}

func statusTitle(kind, title, newStatus string) string {
	switch newStatus {
	case models.StatusApproved, models.StatusCompleted:
		return fmt.Sprintf("Your %s for %q was approved", kind, title)
	case models.StatusDenied:
		return fmt.Sprintf("Your %s for %q was denied", kind, title)
	default:
		return fmt.Sprintf("Your %s for %q changed to %s", kind, title, newStatus)
	}
}

func statusMessage(newStatus, notes string, points int64, amount float64) string {
	msg := "Status: " + newStatus
	if points > 0 {
		msg += fmt.Sprintf(". You earned %d points", points)
	}
	if amount > 0 {
		msg += fmt.Sprintf(" and a reward of %.2f", amount)
	}
	if notes != "" {
		msg += ". Note from the reviewer: " + notes
	}
	return msg
}
