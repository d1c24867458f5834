package notifier

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const exchangeKind = "topic"

// RabbitPublisher публикует события в topic exchange, routing key = имя события
type RabbitPublisher struct {
	channel  amqpChannel
	exchange string
}

// NewRabbitPublisher открывает канал и объявляет durable topic exchange
func NewRabbitPublisher(conn *amqp091.Connection, exchange string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%w: open channel: %v", ErrPublish, err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrPublish, exchange, err)
	}

	return &RabbitPublisher{channel: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event string, payload domain.AppointmentEvent) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, event, err)
	}

	message := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    payload.OccurredAt,
		Type:         string(payload.Type),
		Headers: amqp091.Table{
			"appointment_id": payload.AppointmentID,
		},
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, event, false, false, message); err != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrPublish, event, err)
	}

	return nil
}
