// Package metrics exports the node's state as Prometheus collectors on a
// private registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/node"
)

const (
	metricPrefix = "dual_relay_"

	resultHandled = "handled"
	resultUnknown = "unknown"
)

// Recorder implements node.Observer and mirrors node.State into gauges.
type Recorder struct {
	registry *prometheus.Registry

	relayActive   *prometheus.GaugeVec
	buttonPressed *prometheus.GaugeVec
	bootCount     prometheus.Gauge
	suspect       prometheus.Gauge
	disconnected  prometheus.Gauge
	connected     prometheus.Gauge

	edges    *prometheus.CounterVec
	commands *prometheus.CounterVec
}

var _ node.Observer = (*Recorder)(nil)

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		relayActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "relay_active",
				Help: "1 if the relay output is driven",
			},
			[]string{"relay"},
		),
		buttonPressed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "button_pressed",
				Help: "Debounced button state, 1 if pressed",
			},
			[]string{"button"},
		),
		bootCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "boot_count",
			Help: "Boot count recorded at startup",
		}),
		suspect: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "watchdog_suspect",
			Help: "1 if the boot count reached the watchdog threshold",
		}),
		disconnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "disconnected_seconds",
			Help: "Seconds since the watchdog saw the broker disconnect, 0 when connected",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "mqtt_connected",
			Help: "1 if connected to the MQTT broker",
		}),
		edges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "button_edges_total",
				Help: "Debounced button edges by button and direction",
			},
			[]string{"button", "pressed"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Property writes received by property and result",
			},
			[]string{"property", "result"},
		),
	}

	r.registry.MustRegister(
		r.relayActive,
		r.buttonPressed,
		r.bootCount,
		r.suspect,
		r.disconnected,
		r.connected,
		r.edges,
		r.commands,
	)
	return r
}

// Registry returns the registry for the /metrics handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveEdge(e logic.Edge) {
	r.edges.WithLabelValues(strconv.Itoa(e.Channel), strconv.FormatBool(e.Pressed)).Inc()
}

func (r *Recorder) ObserveCommand(property string, handled bool) {
	result := resultHandled
	if !handled {
		// Unknown names share one series
		property = resultUnknown
		result = resultUnknown
	}
	r.commands.WithLabelValues(property, result).Inc()
}

// Update copies a state snapshot into the gauges.
func (r *Recorder) Update(st node.State, now time.Time) {
	for i, relay := range st.Relays {
		r.relayActive.WithLabelValues(strconv.Itoa(i)).Set(boolValue(relay.Active))
	}
	for i, pressed := range st.Buttons {
		r.buttonPressed.WithLabelValues(strconv.Itoa(i)).Set(boolValue(pressed))
	}
	r.bootCount.Set(float64(st.BootCount))
	r.suspect.Set(boolValue(st.Mode == logic.ModeSuspect))
	r.connected.Set(boolValue(st.Connected))
	if st.DisconnectedSince.IsZero() {
		r.disconnected.Set(0)
	} else {
		r.disconnected.Set(now.Sub(st.DisconnectedSince).Seconds())
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
