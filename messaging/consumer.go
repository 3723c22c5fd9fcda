package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultMaxAttempts caps redelivery of retryable failures before a message is
// parked on the queue's dead-letter sibling instead of requeueing forever.
const DefaultMaxAttempts = 5

const attemptsHeader = "x-attempts"

// Handler processes one raw message body. Returning nil acknowledges the
// message; a PermanentError drops it; any other error triggers redelivery.
type Handler func(ctx context.Context, body []byte) error

// Typed adapts a handler over a concrete event payload. A body that does not
// deserialize is permanently malformed, so it is classified non-retryable.
func Typed[T any](fn func(ctx context.Context, ev T) error) Handler {
	return func(ctx context.Context, body []byte) error {
		var ev T
		if err := json.Unmarshal(body, &ev); err != nil {
			return Permanent(fmt.Errorf("malformed payload: %w", err))
		}
		return fn(ctx, ev)
	}
}

// QueueSpec is one logical event stream: a durable queue bound to exactly the
// routing keys it must service, processed by a single handler.
type QueueSpec struct {
	Queue    string
	Bindings []string
	Handler  Handler
}

// Consumer drives the durable queues of one process. Each queue gets its own
// channel with prefetch 1, so handlers for a queue run strictly one message at
// a time and never concurrently with each other.
type Consumer struct {
	broker      *Broker
	specs       []QueueSpec
	MaxAttempts int
}

func NewConsumer(b *Broker, specs []QueueSpec) *Consumer {
	return &Consumer{broker: b, specs: specs, MaxAttempts: DefaultMaxAttempts}
}

// Run declares all queues and bindings, then consumes until ctx is cancelled.
// On shutdown every consumer registration is cancelled before its channel
// closes, so no handler receives a message mid-teardown.
func (c *Consumer) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, spec := range c.specs {
		ch, err := c.broker.Channel()
		if err != nil {
			return err
		}

		if err := c.declare(ch, spec); err != nil {
			ch.Close()
			return err
		}

		// Prefetch 1: at most one unacknowledged message in flight per queue.
		if err := ch.Qos(1, 0, false); err != nil {
			ch.Close()
			return fmt.Errorf("failed to set prefetch on %q: %w", spec.Queue, err)
		}

		tag := spec.Queue + ".consumer"
		deliveries, err := ch.Consume(spec.Queue, tag, false, false, false, false, nil)
		if err != nil {
			ch.Close()
			return fmt.Errorf("failed to start consumer on %q: %w", spec.Queue, err)
		}

		log.Printf("[Consumer] ✅ consuming %q (bindings: %v)", spec.Queue, spec.Bindings)

		wg.Add(2)
		go func(spec QueueSpec, ch *amqp.Channel, deliveries <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range deliveries {
				c.handle(ctx, ch, spec, d)
			}
		}(spec, ch, deliveries)

		go func(ch *amqp.Channel, tag, queue string) {
			defer wg.Done()
			<-ctx.Done()
			if err := ch.Cancel(tag, false); err != nil {
				log.Printf("[Consumer] cancel %q failed: %v", tag, err)
			}
			if err := ch.Close(); err != nil {
				log.Printf("[Consumer] close channel for %q failed: %v", queue, err)
			}
		}(ch, tag, spec.Queue)
	}

	wg.Wait()
	log.Println("[Consumer] ⏹️ all queues drained, consumer stopped")
	return nil
}

func (c *Consumer) declare(ch *amqp.Channel, spec QueueSpec) error {
	if _, err := ch.QueueDeclare(spec.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", spec.Queue, err)
	}
	if _, err := ch.QueueDeclare(spec.Queue+".dlq", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue for %q: %w", spec.Queue, err)
	}
	for _, key := range spec.Bindings {
		if err := ch.QueueBind(spec.Queue, key, c.broker.Exchange(), false, nil); err != nil {
			return fmt.Errorf("failed to bind %q to %q: %w", spec.Queue, key, err)
		}
	}
	return nil
}

// ackDecision is what the consumer does with a message after its handler ran.
type ackDecision int

const (
	ackMessage        ackDecision = iota // side effect done, remove from queue
	dropMessage                          // permanently unprocessable, nack without requeue
	requeueMessage                       // first transient failure, let the broker redeliver
	redeliverMessage                     // later transient failure, republish with bumped attempt count
	deadLetterMessage                    // attempt budget exhausted, park on the dlq
)

// classify implements the failure taxonomy. The broker's redelivered flag only
// says "seen before", not how often, so attempts past the first are tracked in
// an x-attempts header carried by explicit republish.
func classify(err error, redelivered bool, attempts, maxAttempts int) ackDecision {
	switch {
	case err == nil:
		return ackMessage
	case IsPermanent(err):
		return dropMessage
	case attempts+1 >= maxAttempts:
		return deadLetterMessage
	case !redelivered && attempts == 0:
		return requeueMessage
	default:
		return redeliverMessage
	}
}

func (c *Consumer) handle(ctx context.Context, ch *amqp.Channel, spec QueueSpec, d amqp.Delivery) {
	err := spec.Handler(ctx, d.Body)
	attempts := deliveryAttempts(d)

	switch classify(err, d.Redelivered, attempts, c.MaxAttempts) {
	case ackMessage:
		if err := d.Ack(false); err != nil {
			log.Printf("[Consumer] ack failed on %q: %v", spec.Queue, err)
		}
	case dropMessage:
		log.Printf("[Consumer] ❌ dropping unprocessable message %s on %q: %v", d.MessageId, spec.Queue, err)
		if err := d.Nack(false, false); err != nil {
			log.Printf("[Consumer] nack failed on %q: %v", spec.Queue, err)
		}
	case requeueMessage:
		log.Printf("[Consumer] ⚠️ requeueing message %s on %q: %v", d.MessageId, spec.Queue, err)
		if err := d.Nack(false, true); err != nil {
			log.Printf("[Consumer] nack failed on %q: %v", spec.Queue, err)
		}
	case redeliverMessage:
		c.republish(ctx, ch, spec.Queue, d, attempts+1, err)
	case deadLetterMessage:
		log.Printf("[Consumer] 💀 dead-lettering message %s on %q after %d attempts: %v",
			d.MessageId, spec.Queue, attempts+1, err)
		c.republish(ctx, ch, spec.Queue+".dlq", d, attempts+1, err)
	}
}

// republish re-enqueues d on queue (same body and identity, bumped attempt
// count) through the default exchange, then acks the original delivery.
func (c *Consumer) republish(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery, attempts int, cause error) {
	headers := amqp.Table{attemptsHeader: int32(attempts)}
	if cause != nil {
		headers["x-last-error"] = cause.Error()
	}

	pubErr := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Type:         d.Type,
		Timestamp:    d.Timestamp,
		Headers:      headers,
		Body:         d.Body,
	})
	if pubErr != nil {
		// Keep the original delivery alive instead; the broker redelivers it.
		log.Printf("[Consumer] republish to %q failed, falling back to requeue: %v", queue, pubErr)
		if err := d.Nack(false, true); err != nil {
			log.Printf("[Consumer] nack failed on %q: %v", queue, err)
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Printf("[Consumer] ack after republish failed on %q: %v", queue, err)
	}
}

func deliveryAttempts(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	switch v := d.Headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
