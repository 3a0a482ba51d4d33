package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Client represents a RabbitMQ client.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels must not be used by several goroutines at once.
	mu sync.Mutex
}

// Close closes the channel and then the connection.
func (r *Client) Close() error {
	if err := r.channel.Close(); err != nil {
		_ = r.conn.Close()

		return fmt.Errorf("failed to close channel: %w", err)
	}

	return r.conn.Close()
}

// MustNewClient dials the broker at rabbitmq.host:rabbitmq.port. Credentials
// come from the LITTLELEMON_RABBITMQ_USER and LITTLELEMON_RABBITMQ_PASSWORD
// environment variables.
func MustNewClient() *Client {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     viper.GetString("rabbitmq.host"),
		Port:     viper.GetInt("rabbitmq.port"),
		Username: os.Getenv("LITTLELEMON_RABBITMQ_USER"),
		Password: os.Getenv("LITTLELEMON_RABBITMQ_PASSWORD"),
		Vhost:    viper.GetString("rabbitmq.vhost"),
	}
	if uri.Host == "" {
		uri.Host = "rabbitmq"
	}
	if uri.Port == 0 {
		uri.Port = 5672
	}
	if uri.Vhost == "" {
		uri.Vhost = "/"
	}

	conn, err := amqp.Dial(uri.String())
	if err != nil {
		panic(fmt.Sprintf("failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		panic(fmt.Sprintf("failed to open a RabbitMQ channel: %v", err))
	}

	slog.Info("RabbitMQ connected", "host", uri.Host, "port", uri.Port, "vhost", uri.Vhost)

	return &Client{
		conn:    conn,
		channel: channel,
	}
}

// DeclareExchangeConfig describes an exchange to declare.
type DeclareExchangeConfig struct {
	Name       string
	Kind       string
	Durable    bool
	AutoDelete bool
}

// DeclareExchange declares an exchange with the given configuration.
func (r *Client) DeclareExchange(cfg DeclareExchangeConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.ExchangeDeclare(cfg.Name, cfg.Kind, cfg.Durable, cfg.AutoDelete, false, false, nil)
}

// DeclareQueueConfig describes a queue to declare.
type DeclareQueueConfig struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp.Table
	// BindExchange and BindKey bind the queue when set.
	BindExchange string
	BindKey      string
}

// DeclareQueue declares a queue with the given configuration and binds it if asked to.
func (r *Client) DeclareQueue(cfg DeclareQueueConfig) (amqp.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, err := r.channel.QueueDeclare(
		cfg.Name,
		cfg.Durable,
		cfg.AutoDelete,
		cfg.Exclusive,
		cfg.NoWait,
		cfg.Args,
	)
	if err != nil {
		return amqp.Queue{}, err
	}

	if cfg.BindExchange != "" {
		if err := r.channel.QueueBind(queue.Name, cfg.BindKey, cfg.BindExchange, cfg.NoWait, nil); err != nil {
			return amqp.Queue{}, err
		}
	}

	return queue, nil
}

// Message is a single persistent publishing.
type Message struct {
	Exchange    string
	RoutingKey  string
	MessageID   string
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

// Publish sends msg. The context is checked before the channel is taken.
func (r *Client) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.Publish(
		msg.Exchange,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  msg.ContentType,
			MessageId:    msg.MessageID,
			Timestamp:    msg.Timestamp,
			DeliveryMode: amqp.Persistent,
			Body:         msg.Body,
		},
	)
}
