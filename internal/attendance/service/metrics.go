package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the scan service to Prometheus.  A nil *Metrics is a
// valid no-op receiver so tests can skip registration entirely.
type Metrics struct {
	scans   *prometheus.CounterVec
	running prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_scans_total",
			Help: "Processed card scans by terminal outcome.",
		}, []string{"outcome"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_service_running",
			Help: "Whether the scan loop is running (1) or stopped (0).",
		}),
	}
	reg.MustRegister(m.scans, m.running)
	return m
}

func (m *Metrics) ScanProcessed(outcome Outcome) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}
