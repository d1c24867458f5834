package notifier

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warn(format string, v ...interface{}) {}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, domain.AppointmentEvent) error {
	return ErrPublish
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func testEvent() domain.AppointmentEvent {
	return domain.AppointmentEvent{
		Type:              domain.NotificationConfirmed,
		AppointmentID:     "64b7f0c2a1b2c3d4e5f60799",
		AppointmentNumber: "APT-20250610-00042",
		PatientID:         "p1",
		Status:            domain.StatusBooked,
		Date:              time.Date(2025, 6, 10, 4, 30, 0, 0, time.UTC),
		Message:           "Your appointment has been booked",
		OccurredAt:        time.Date(2025, 6, 1, 3, 30, 0, 0, time.UTC),
	}
}

func TestNotifier_SwallowsPublishErrors(t *testing.T) {
	log := &recordingLogger{}
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	n := New(failingPublisher{}, log, m, time.Second)

	assert.NotPanics(t, func() {
		n.Emit(context.Background(), domain.EventAppointmentCreated, testEvent())
	})

	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], domain.EventAppointmentCreated)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(domain.EventAppointmentCreated, "error")))
}

func TestNotifier_EmitsThroughLogPublisher(t *testing.T) {
	log := &recordingLogger{}
	n := New(NewLogPublisher(log), log, nil, 0)

	n.Emit(context.Background(), domain.EventAppointmentRescheduled, testEvent())

	assert.Empty(t, log.errors)
	require.Len(t, log.infos, 2)
	assert.Contains(t, log.infos[0], "APT-20250610-00042")
}

func TestNotifier_IgnoresCancelledRequestContext(t *testing.T) {
	ch := &fakeChannel{}
	n := New(&RabbitPublisher{channel: ch, exchange: "appointments"}, &recordingLogger{}, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Emit(ctx, domain.EventAppointmentUpdated, testEvent())

	assert.Equal(t, domain.EventAppointmentUpdated, ch.key)
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, exchange: "appointments"}

	err := p.Publish(context.Background(), domain.EventAppointmentCreated, testEvent())

	require.NoError(t, err)
	assert.Equal(t, "appointments", ch.exchange)
	assert.Equal(t, domain.EventAppointmentCreated, ch.key)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var decoded domain.AppointmentEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "APT-20250610-00042", decoded.AppointmentNumber)
	assert.Equal(t, domain.NotificationConfirmed, decoded.Type)
}

func TestRabbitPublisher_WrapsChannelError(t *testing.T) {
	p := &RabbitPublisher{channel: &fakeChannel{err: amqp091.ErrClosed}, exchange: "appointments"}

	err := p.Publish(context.Background(), domain.EventAppointmentCreated, testEvent())

	assert.ErrorIs(t, err, ErrPublish)
}
