package rabbitmq

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher writes JSON messages to the main queue or its retry queue.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DeclareTopology declares the main queue with its .retry and .dlq siblings.
// Retry messages expire back into the main queue; rejected ones land in the DLQ.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	mainQ := queue
	retryQ := queue + ".retry"
	dlqQ := queue + ".dlq"

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Retry queue: message TTL -> dead-letter back to main queue
	if _, err := ch.QueueDeclare(
		retryQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": mainQ,
		},
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		mainQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	)
	return err
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, v any) error {
	return p.publish(ctx, p.queue, v, "")
}

// PublishRetry parks v in the retry queue for delay before it returns to the main queue.
func (p *Publisher) PublishRetry(ctx context.Context, v any, delay time.Duration) error {
	ms := delay.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return p.publish(ctx, p.queue+".retry", v, strconv.FormatInt(ms, 10))
}

func (p *Publisher) publish(ctx context.Context, routingKey string, v any, expiration string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(cctx,
		"",         // default exchange
		routingKey, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			Expiration:   expiration,
		},
	)
}
