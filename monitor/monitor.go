// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedPlayers prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	EventsReceived   prometheus.Counter
	EventLatency     prometheus.Histogram
	RoomsCleaned     prometheus.Counter
	QuestionsFlagged prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of connected players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms with at least one live connection",
		}),
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of socket events received",
		}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_latency_seconds",
			Help:      "Socket event handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		RoomsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_cleaned_total",
			Help:      "Total number of idle rooms cleaned up",
		}),
		QuestionsFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_flagged_total",
			Help:      "Total number of question reports received",
		}),
	}

	prometheus.MustRegister(
		m.ConnectedPlayers,
		m.ActiveRooms,
		m.EventsReceived,
		m.EventLatency,
		m.RoomsCleaned,
		m.QuestionsFlagged,
	)

	return m
}

type Monitor struct {
	metrics    *Metrics
	startTime  time.Time
	eventCount int64
	mutex      sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("events", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.eventCount
	}))
	mux.Handle("/debug/vars", expvar.Handler())

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) IncConnectedPlayers() {
	m.metrics.ConnectedPlayers.Inc()
}

func (m *Monitor) DecConnectedPlayers() {
	m.metrics.ConnectedPlayers.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncEventsReceived() {
	m.metrics.EventsReceived.Inc()
	m.mutex.Lock()
	m.eventCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveEventLatency(duration time.Duration) {
	m.metrics.EventLatency.Observe(duration.Seconds())
}

func (m *Monitor) IncRoomsCleaned() {
	m.metrics.RoomsCleaned.Inc()
}

func (m *Monitor) IncQuestionsFlagged() {
	m.metrics.QuestionsFlagged.Inc()
}
