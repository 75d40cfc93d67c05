package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/rabbitmq"
)

// EventPublisher announces submission and overdue events to interested
// consumers. Publishing is fire-and-forget: a broker outage never blocks
// the tracking core.
type EventPublisher interface {
	PublishSubmissionReceived(ctx context.Context, event *models.SubmissionReceivedEvent) error
	PublishTaskOverdue(ctx context.Context, event *models.TaskOverdueEvent) error
	Close() error
}

type eventPublisher struct {
	conn              *amqp.Connection
	channel           *amqp.Channel
	exchange          string
	submissionRouting string
	overdueRouting    string
	logger            zerolog.Logger
}

func NewEventPublisher(url, exchange, submissionRouting, overdueRouting string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := rabbitmq.NewConnection(url)
	if err != nil {
		return nil, err
	}

	channel, err := rabbitmq.NewChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &eventPublisher{
		conn:              conn,
		channel:           channel,
		exchange:          exchange,
		submissionRouting: submissionRouting,
		overdueRouting:    overdueRouting,
		logger:            logger,
	}, nil
}

func (p *eventPublisher) PublishSubmissionReceived(ctx context.Context, event *models.SubmissionReceivedEvent) error {
	return p.publish(ctx, p.submissionRouting, event)
}

func (p *eventPublisher) PublishTaskOverdue(ctx context.Context, event *models.TaskOverdueEvent) error {
	return p.publish(ctx, p.overdueRouting, event)
}

func (p *eventPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().Str("routing_key", routingKey).Msg("Event published")
	return nil
}

func (p *eventPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
