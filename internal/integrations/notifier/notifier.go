package notifier

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const defaultTimeout = 3 * time.Second

// Notifier доставляет события по принципу best-effort.
// Ошибка публикации логируется и учитывается в метриках, но не возвращается вызывающему.
type Notifier struct {
	publisher Publisher
	log       Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
}

// New создает notifier. m может быть nil.
func New(publisher Publisher, log Logger, m *metrics.Metrics, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{publisher: publisher, log: log, metrics: m, timeout: timeout}
}

// Emit публикует событие. Отмена контекста запроса не прерывает публикацию.
func (n *Notifier) Emit(ctx context.Context, event string, payload domain.AppointmentEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	err := n.publisher.Publish(ctx, event, payload)
	n.metrics.ObserveNotification(event, err)

	if err != nil {
		n.log.Error("Failed to emit %s for appointment_id=%s: %v", event, payload.AppointmentID, err)
		return
	}

	n.log.Info("Emitted %s for appointment_id=%s", event, payload.AppointmentID)
}

// LogPublisher пишет события в лог. Используется, когда RabbitMQ отключен.
type LogPublisher struct {
	log Logger
}

func NewLogPublisher(log Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event string, payload domain.AppointmentEvent) error {
	p.log.Info("Event %s type=%s appointment=%s patient=%s: %s",
		event, payload.Type, payload.AppointmentNumber, payload.PatientID, payload.Message)
	return nil
}
