package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus instrumentation for a session's
// lifecycle and traffic. All methods are nil-safe: calls on a nil
// *Metrics are no-ops, so a Session never has to branch on whether
// metrics were configured.
type Metrics struct {
	StateTransitions *prometheus.CounterVec
	FramesSent       prometheus.Counter
	FramesReceived   prometheus.Counter
	Orphans          prometheus.Counter
	Timeouts         prometheus.Counter
	Throttled        prometheus.Counter
	Reconnects       prometheus.Counter
	WindowInFlight   prometheus.Gauge
}

// NewMetrics creates and registers session metrics. If reg is nil,
// the metrics are created but not registered (useful for tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "state_transitions_total",
			Help:      "Count of session state transitions, labeled by destination state.",
		}, []string{"state"}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "frames_sent_total",
			Help:      "Total PDU frames written to the wire.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Total PDU frames read from the wire.",
		}),
		Orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "orphan_responses_total",
			Help:      "Responses that matched no pending request.",
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "request_timeouts_total",
			Help:      "Pending requests reclaimed by the timekeeper.",
		}),
		Throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "throttled_total",
			Help:      "Responses carrying ESME_RTHROTTLED or ESME_RMSGQFUL.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts started.",
		}),
		WindowInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "smpplib",
			Subsystem: "session",
			Name:      "window_in_flight",
			Help:      "Current number of requests awaiting a response.",
		}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{
			m.StateTransitions, m.FramesSent, m.FramesReceived,
			m.Orphans, m.Timeouts, m.Throttled, m.Reconnects, m.WindowInFlight,
		}
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}

	return m
}

func (m *Metrics) recordTransition(s State) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) recordFrameSent() {
	if m == nil {
		return
	}
	m.FramesSent.Inc()
}

func (m *Metrics) recordFrameReceived() {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
}

func (m *Metrics) recordOrphan() {
	if m == nil {
		return
	}
	m.Orphans.Inc()
}

func (m *Metrics) recordTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

func (m *Metrics) recordThrottled() {
	if m == nil {
		return
	}
	m.Throttled.Inc()
}

func (m *Metrics) recordReconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

func (m *Metrics) setWindowInFlight(n int) {
	if m == nil {
		return
	}
	m.WindowInFlight.Set(float64(n))
}
