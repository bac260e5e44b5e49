package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/types"
)

const exchangeType = "topic"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	now      func() time.Time
}

// NewRabbitMQPublisher dials the broker and declares a durable topic exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	var conn *amqp.Connection
	var err error

	// A few attempts cover the broker container starting after us
	for i := 0; i < 3; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to RabbitMQ (attempt %d): %v", i+1, err)
		time.Sleep(time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &RabbitMQPublisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

func (p *RabbitMQPublisher) PublishOrderCompleted(ctx context.Context, detail models.OrderDetail) error {
	body, err := json.Marshal(NewOrderCompleted(detail, p.now()))
	if err != nil {
		return fmt.Errorf("could not marshal order event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,            // exchange
		RoutingOrderCompleted, // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    detail.Order.ID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
}

func (p *RabbitMQPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Compile-time interface check
var _ types.EventPublisher = (*RabbitMQPublisher)(nil)
