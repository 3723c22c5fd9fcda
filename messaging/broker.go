package messaging

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the durable topic exchange all domain events flow through.
const DefaultExchange = "cleanup.events"

// Broker holds the process-wide AMQP connection. One per process, opened in
// main and closed on shutdown; publishers and consumers open channels off it.
type Broker struct {
	conn     *amqp.Connection
	exchange string
}

// Dial connects to the broker and declares the topic exchange. The declare is
// idempotent: durable, non-auto-deleted, so restarts do not lose topology.
func Dial(url, exchange string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	b := &Broker{conn: conn, exchange: exchange}

	ch, err := b.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	ch.Close()

	log.Printf("[Broker] ✅ connected, exchange %q declared", exchange)
	return b, nil
}

func (b *Broker) Exchange() string { return b.exchange }

// Channel opens a new channel and re-declares the exchange on it.
func (b *Broker) Channel() (*amqp.Channel, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		b.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // auto-delete
		false,      // internal
		false,      // no-wait
		nil,
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", b.exchange, err)
	}
	return ch, nil
}

func (b *Broker) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}
	return b.conn.Close()
}
