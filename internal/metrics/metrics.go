package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 所有 Prometheus 指标。nil *Registry 上的方法都是空操作，服务层可不注入
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	MessagesTotal      *prometheus.CounterVec
	CommunitiesDeleted prometheus.Counter
	CascadeFailures    *prometheus.CounterVec
	OrphansSwept       *prometheus.CounterVec
	OutboxRelayed      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Registry {
	f := promauto.With(reg)
	return &Registry{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_http_requests_total",
				Help: "Total HTTP requests processed by route, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),
		MessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_total",
				Help: "Message pipeline outcomes by result",
			},
			[]string{"result"},
		),
		CommunitiesDeleted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_communities_deleted_total",
				Help: "Communities removed by their owner",
			},
		),
		CascadeFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_cascade_failures_total",
				Help: "Best-effort cascade steps that failed, by step",
			},
			[]string{"step"},
		),
		OrphansSwept: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_orphans_swept_total",
				Help: "Orphaned records removed by the sweeper, by collection",
			},
			[]string{"collection"},
		),
		OutboxRelayed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_outbox_relayed_total",
				Help: "Outbox events relayed, by result",
			},
			[]string{"result"},
		),
	}
}

func (r *Registry) MessageOutcome(result string) {
	if r == nil {
		return
	}
	r.MessagesTotal.WithLabelValues(result).Inc()
}

func (r *Registry) CommunityDeleted() {
	if r == nil {
		return
	}
	r.CommunitiesDeleted.Inc()
}

func (r *Registry) CascadeFailed(step string) {
	if r == nil {
		return
	}
	r.CascadeFailures.WithLabelValues(step).Inc()
}

func (r *Registry) Swept(collection string, n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.OrphansSwept.WithLabelValues(collection).Add(float64(n))
}

func (r *Registry) Relayed(result string) {
	if r == nil {
		return
	}
	r.OutboxRelayed.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveHTTP(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
