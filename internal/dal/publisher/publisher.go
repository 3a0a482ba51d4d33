package publisher

import (
	"context"
	"log/slog"

	"github.com/corray333/littlelemon/internal/dal/rabbitmq"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
)

// RabbitMQPublisher delivers outbox messages to RabbitMQ.
type RabbitMQPublisher struct {
	client *rabbitmq.Client
}

// NewRabbitMQPublisher creates a publisher and declares the topology the
// messages are routed through.
func NewRabbitMQPublisher(client *rabbitmq.Client, exchange, queue, routingKey string) *RabbitMQPublisher {
	if exchange != "" {
		if err := client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
			Name:    exchange,
			Kind:    "topic",
			Durable: true,
		}); err != nil {
			panic(err)
		}
	}

	if queue != "" {
		if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:         queue,
			Durable:      true,
			BindExchange: exchange,
			BindKey:      routingKey,
		}); err != nil {
			panic(err)
		}
	}

	return &RabbitMQPublisher{
		client: client,
	}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, msg outbox.Message) error {
	return p.client.Publish(ctx, rabbitmq.Message{
		Exchange:    msg.Exchange,
		RoutingKey:  msg.RoutingKey,
		MessageID:   msg.MessageID,
		ContentType: msg.ContentType,
		Body:        msg.Payload,
		Timestamp:   msg.CreatedAt,
	})
}

// LogPublisher writes outbox messages to the structured log. It is used when
// RabbitMQ is disabled.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, msg outbox.Message) error {
	p.logger.InfoContext(ctx, "Order event",
		"message_id", msg.MessageID,
		"exchange", msg.Exchange,
		"routing_key", msg.RoutingKey,
		"payload", string(msg.Payload),
	)

	return nil
}
