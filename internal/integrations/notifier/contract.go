package notifier

import (
	"context"

	"github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher доставляет событие во внешний канал
type Publisher interface {
	Publish(ctx context.Context, event string, payload domain.AppointmentEvent) error
}

// amqpChannel подмножество *amqp091.Channel, используемое публикатором
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}
