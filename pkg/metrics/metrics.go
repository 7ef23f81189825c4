package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec
	dbWaitCount     prometheus.Gauge

	reservationsCreated prometheus.Counter
	bookingConflicts    *prometheus.CounterVec
	txRetries           prometheus.Counter
	slotCache           *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "status"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_wait_total",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reservations_created_total",
			Help:        "Total number of created reservations",
			ConstLabels: labels,
		}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Booking attempts rejected by availability rules",
			ConstLabels: labels,
		}, []string{"reason"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "db_tx_retries_total",
			Help:        "Serializable transactions retried after a conflict",
			ConstLabels: labels,
		}),
		slotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_requests_total",
			Help:        "Available slots cache lookups",
			ConstLabels: labels,
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbConnections,
		m.dbWaitCount,
		m.reservationsCreated,
		m.bookingConflicts,
		m.txRetries,
		m.slotCache,
	)

	return m
}

// ObserveHTTPRequest записывает результат HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery записывает длительность SQL запроса
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetDBStats обновляет метрики пула соединений
func (m *Metrics) SetDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// IncReservationCreated увеличивает счетчик созданных бронирований
func (m *Metrics) IncReservationCreated() {
	if m == nil {
		return
	}
	m.reservationsCreated.Inc()
}

// IncBookingConflict увеличивает счетчик отказов в бронировании
func (m *Metrics) IncBookingConflict(reason string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(reason).Inc()
}

// IncTxRetry увеличивает счетчик повторов транзакций
func (m *Metrics) IncTxRetry() {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

// IncSlotCache учитывает попадание или промах кеша слотов
func (m *Metrics) IncSlotCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.slotCache.WithLabelValues(result).Inc()
}
