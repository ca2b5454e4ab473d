package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/icebreaker-bot/internal/metrics"
	"go.uber.org/zap"
)

const maxBackoff = 10 * time.Minute

// Backoff is the wait before retry number attempt (1-based): base, 2*base, 4*base...
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

type RetryPublisher interface {
	PublishRetry(ctx context.Context, v any, delay time.Duration) error
}

type Decision int

const (
	Ack Decision = iota
	// DeadLetter rejects the message without requeue so the broker moves it to the DLQ.
	DeadLetter
)

type Consumer struct {
	proc        *Processor
	retry       RetryPublisher
	maxAttempts int
	base        time.Duration
	log         *zap.Logger
}

func NewConsumer(proc *Processor, retry RetryPublisher, maxAttempts int, base time.Duration, log *zap.Logger) *Consumer {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{proc: proc, retry: retry, maxAttempts: maxAttempts, base: base, log: log}
}

// Handle processes one message body and says what to do with the delivery.
func (c *Consumer) Handle(ctx context.Context, body []byte) Decision {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil || job.Validate() != nil {
		c.log.Warn("bad delivery job", zap.ByteString("body", body), zap.Error(err))
		metrics.DeliveryJobsTotal.WithLabelValues("bad").Inc()
		return DeadLetter
	}

	start := time.Now()
	err := c.proc.Process(ctx, job)
	if err == nil {
		metrics.DeliveryJobsTotal.WithLabelValues("sent").Inc()
		return Ack
	}
	if errors.Is(err, context.Canceled) {
		// shutting down after the send; the message itself went out
		return Ack
	}

	job.Attempt++
	log := c.log.With(
		zap.String("job_id", job.ID),
		zap.String("chat_id", job.ChatID),
		zap.Int("attempt", job.Attempt),
		zap.Duration("cost", time.Since(start)),
		zap.Error(err),
	)

	if job.Attempt >= c.maxAttempts {
		log.Error("delivery job dropped")
		metrics.DeliveryJobsTotal.WithLabelValues("dropped").Inc()
		return DeadLetter
	}

	delay := Backoff(c.base, job.Attempt)
	if rerr := c.retry.PublishRetry(ctx, job, delay); rerr != nil {
		log.Error("delivery retry publish failed", zap.NamedError("retry_error", rerr))
		metrics.DeliveryJobsTotal.WithLabelValues("dropped").Inc()
		return DeadLetter
	}
	log.Warn("delivery job scheduled for retry", zap.Duration("delay", delay))
	metrics.DeliveryJobsTotal.WithLabelValues("retried").Inc()
	return Ack
}

// Run consumes msgs one at a time until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			switch c.Handle(ctx, d.Body) {
			case Ack:
				if err := d.Ack(false); err != nil {
					c.log.Error("ack failed", zap.Error(err))
				}
			case DeadLetter:
				if err := d.Nack(false, false); err != nil {
					c.log.Error("nack failed", zap.Error(err))
				}
			}
		}
	}
}
