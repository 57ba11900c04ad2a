package playback

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the playback loop's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	Ticks        prometheus.Counter
	FramesSent   prometheus.Counter
	PosesSent    prometheus.Counter
	PosesSkipped prometheus.Counter
	SendErrors   prometheus.Counter
	SendDuration prometheus.Histogram
	ShowTime     prometheus.Gauge
	ShowDuration prometheus.Gauge
}

// NewMetrics registers the playback metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice on the same
// registry returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{gatherer: gatherer}
	var err error

	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&m.Ticks, "swarmshow_playback_ticks_total", "Playback loop ticks while playing."},
		{&m.FramesSent, "swarmshow_frames_sent_total", "Frames delivered to the flight link."},
		{&m.PosesSent, "swarmshow_poses_sent_total", "Drone setpoints delivered to the flight link."},
		{&m.PosesSkipped, "swarmshow_poses_skipped_total", "Drone setpoints dropped by the dead-zone filter."},
		{&m.SendErrors, "swarmshow_send_errors_total", "Frames the flight link failed to deliver."},
	}
	for _, c := range counters {
		*c.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: c.name,
			Help: c.help,
		}), c.name)
		if err != nil {
			return nil, err
		}
	}

	m.SendDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "swarmshow_send_duration_seconds",
		Help:    "Time spent delivering one frame.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}), "swarmshow_send_duration_seconds")
	if err != nil {
		return nil, err
	}

	m.ShowTime, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swarmshow_show_time_seconds",
		Help: "Current position on the show timeline.",
	}), "swarmshow_show_time_seconds")
	if err != nil {
		return nil, err
	}
	m.ShowDuration, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swarmshow_show_duration_seconds",
		Help: "Length of the loaded show.",
	}), "swarmshow_show_duration_seconds")
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) tick() {
	if m != nil {
		m.Ticks.Inc()
	}
}

func (m *Metrics) sent(poses int, seconds float64) {
	if m != nil {
		m.FramesSent.Inc()
		m.PosesSent.Add(float64(poses))
		m.SendDuration.Observe(seconds)
	}
}

func (m *Metrics) skipped(poses int) {
	if m != nil && poses > 0 {
		m.PosesSkipped.Add(float64(poses))
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.SendErrors.Inc()
	}
}

func (m *Metrics) progress(t, duration float64) {
	if m != nil {
		m.ShowTime.Set(t)
		m.ShowDuration.Set(duration)
	}
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
