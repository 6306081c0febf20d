package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	EventsTotal         *prometheus.CounterVec
	RecognitionFailures prometheus.Counter
	LedgerWriteErrors   prometheus.Counter
	ProviderLatency     *prometheus.HistogramVec
}

// New registers the application instruments on the given registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_events_total",
			Help: "Inbound chat events handled, by event type.",
		}, []string{"type"}),
		RecognitionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_recognition_failures_total",
			Help: "Recognition or composition calls classified as failures.",
		}),
		LedgerWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_ledger_write_errors_total",
			Help: "Ledger snapshot writes that failed and were rolled back.",
		}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutrilog_provider_latency_seconds",
			Help:    "Outbound provider call latency, by provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	for _, c := range []prometheus.Collector{
		m.EventsTotal,
		m.RecognitionFailures,
		m.LedgerWriteErrors,
		m.ProviderLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewRegistry builds the process-wide prometheus registry with runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Module wires the prometheus registry and application instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(
		NewRegistry,
		New,
	),
)
