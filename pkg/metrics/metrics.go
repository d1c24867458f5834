package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smc"

// Metrics holds every collector exported by the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec
	DBTxRetries     *prometheus.CounterVec

	AppointmentOperations *prometheus.CounterVec
	SlotConflicts         *prometheus.CounterVec
	Notifications         *prometheus.CounterVec
	LockWaitDuration      *prometheus.HistogramVec
}

// New registers collectors on the default Prometheus registry.
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry registers collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "db",
			Name:        "query_duration_seconds",
			Help:        "Database query latency by statement kind",
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "db",
			Name:        "query_errors_total",
			Help:        "Failed database queries by statement kind",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "db",
			Name:        "connections",
			Help:        "Connection pool state",
			ConstLabels: constLabels,
		}, []string{"state"}),

		DBTxRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "db",
			Name:        "tx_retries_total",
			Help:        "Serializable transactions retried after a serialization failure",
			ConstLabels: constLabels,
		}, []string{"isolation"}),

		AppointmentOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "appointments",
			Name:        "operations_total",
			Help:        "Appointment write operations by outcome",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),

		SlotConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "appointments",
			Name:        "slot_conflicts_total",
			Help:        "Rejected writes because the hospital/department window was taken",
			ConstLabels: constLabels,
		}, []string{"operation", "source"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "notifications",
			Name:        "emitted_total",
			Help:        "Notification emits by event and outcome",
			ConstLabels: constLabels,
		}, []string{"event", "result"}),

		LockWaitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "lock",
			Name:        "wait_duration_seconds",
			Help:        "Time spent waiting for the scheduling lock",
			Buckets:     []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
}

// ObserveAppointment counts one appointment operation outcome. Safe on a nil receiver.
func (m *Metrics) ObserveAppointment(operation, result string) {
	if m == nil {
		return
	}
	m.AppointmentOperations.WithLabelValues(operation, result).Inc()
}

// ObserveConflict counts a rejected write. source is "check" or "constraint".
func (m *Metrics) ObserveConflict(operation, source string) {
	if m == nil {
		return
	}
	m.SlotConflicts.WithLabelValues(operation, source).Inc()
}

// ObserveNotification counts one notification emit.
func (m *Metrics) ObserveNotification(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(event, result).Inc()
}
