package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// VerificationRequestedEvent is consumed by the mailer service, which
// owns the actual email delivery.
type VerificationRequestedEvent struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}

// AMQPVerificationPublisher publishes verification events to RabbitMQ.
// Failures are logged and returned so callers can ignore them without
// interrupting the request flow.
type AMQPVerificationPublisher struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewAMQPVerificationPublisher creates a RabbitMQ-backed publisher
func NewAMQPVerificationPublisher(url, queue string, logger *zap.Logger) *AMQPVerificationPublisher {
	return &AMQPVerificationPublisher{url: url, queue: queue, logger: logger}
}

// PublishVerificationRequested publishes a persistent event to the
// verification queue, declaring the queue idempotently first.
func (p *AMQPVerificationPublisher) PublishVerificationRequested(ctx context.Context, userID, email, token string) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("amqp queue declare failed: %w", err)
	}

	body, err := json.Marshal(VerificationRequestedEvent{
		UserID:      userID,
		Email:       email,
		Token:       token,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal verification event: %w", err)
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("amqp publish failed: %w", err)
	}

	p.logger.Debug("verification event published", zap.String("user_id", userID))

	return nil
}

// NopVerificationPublisher is used when no broker is configured; the
// verification token is then only returned in the HTTP response.
type NopVerificationPublisher struct{}

// PublishVerificationRequested does nothing
func (NopVerificationPublisher) PublishVerificationRequested(context.Context, string, string, string) error {
	return nil
}
