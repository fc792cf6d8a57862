package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stream outcomes recorded in file_streams_total.
const (
	OutcomeCompleted        = "completed"
	OutcomeAborted          = "aborted"
	OutcomeFailed           = "failed"
	OutcomeNotFound         = "not_found"
	OutcomeForbidden        = "forbidden"
	OutcomeObjectNotFound   = "object_not_found"
	OutcomeRangeUnsatisfied = "range_not_satisfiable"
	OutcomeTimeout          = "timeout"
	OutcomeOpenError        = "open_error"
)

// StreamMetrics holds the Prometheus collectors of the download/stream path.
// A nil *StreamMetrics records nothing.
type StreamMetrics struct {
	active  prometheus.Gauge
	bytes   *prometheus.CounterVec
	streams *prometheus.CounterVec
}

// NewStreamMetrics creates the collectors and registers them on reg.
func NewStreamMetrics(reg prometheus.Registerer) (*StreamMetrics, error) {
	m := &StreamMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "file_streams_active",
			Help: "Number of object streams currently being relayed.",
		}),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "file_stream_bytes_total",
				Help: "Total number of object bytes relayed to clients.",
			},
			[]string{"endpoint"},
		),
		streams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "file_streams_total",
				Help: "Total number of download and stream requests by outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.active, m.bytes, m.streams} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *StreamMetrics) started() {
	if m == nil {
		return
	}
	m.active.Inc()
}

func (m *StreamMetrics) addBytes(endpoint string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(endpoint).Add(float64(n))
}

func (m *StreamMetrics) finished(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.active.Dec()
	m.streams.WithLabelValues(endpoint, outcome).Inc()
}

func (m *StreamMetrics) rejected(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.streams.WithLabelValues(endpoint, outcome).Inc()
}
