package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the message broker gateway: it turns a typed event into a
// persistent message on the topic exchange. Publish returns only after the
// broker has confirmed the message, never fire-and-forget.
type Publisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(b *Broker) (*Publisher, error) {
	ch, err := b.Channel()
	if err != nil {
		return nil, err
	}
	// Confirm mode so Publish can wait for broker acceptance.
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	return &Publisher{ch: ch, exchange: b.exchange}, nil
}

// Publish serializes ev (UTC timestamps via time.Time's RFC 3339 JSON form),
// stamps id/type/timestamp, marks it persistent and waits for the broker's
// confirmation. Failures come back as a *PublishError; the caller decides
// whether that is fatal.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	key := ev.RoutingKey()

	body, err := json.Marshal(ev)
	if err != nil {
		return &PublishError{RoutingKey: key, Err: fmt.Errorf("marshal event: %w", err)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         ev.Type(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return &PublishError{RoutingKey: key, Err: err}
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return &PublishError{RoutingKey: key, Err: err}
	}
	if !acked {
		return &PublishError{RoutingKey: key, Err: fmt.Errorf("broker nacked message")}
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
