package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/node"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestUpdate(t *testing.T) {
	r := New()

	var st node.State
	st.Relays[1].Active = true
	st.Buttons[0] = true
	st.BootCount = 4
	st.Mode = logic.ModeSuspect
	st.DisconnectedSince = t0
	r.Update(st, t0.Add(12*time.Second))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.relayActive.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.relayActive.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.buttonPressed.WithLabelValues("0")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.bootCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.suspect))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.disconnected))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.connected))

	st.Connected = true
	st.DisconnectedSince = time.Time{}
	r.Update(st, t0.Add(20*time.Second))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.disconnected))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.connected))
}

func TestObserveEdge(t *testing.T) {
	r := New()
	r.ObserveEdge(logic.Edge{Channel: 1, Pressed: true})
	r.ObserveEdge(logic.Edge{Channel: 1, Pressed: true})
	r.ObserveEdge(logic.Edge{Channel: 1, Pressed: false})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.edges.WithLabelValues("1", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.edges.WithLabelValues("1", "false")))
}

func TestObserveCommand(t *testing.T) {
	r := New()
	r.ObserveCommand("relay0", true)
	r.ObserveCommand("relay0momentary", true)
	r.ObserveCommand("garbage/1", false)
	r.ObserveCommand("garbage/2", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.commands.WithLabelValues("relay0", "handled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.commands.WithLabelValues("unknown", "unknown")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.commands))
}

func TestRegistryExposition(t *testing.T) {
	r := New()
	r.Update(node.State{BootCount: 2}, t0)

	expected := `
# HELP dual_relay_boot_count Boot count recorded at startup
# TYPE dual_relay_boot_count gauge
dual_relay_boot_count 2
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "dual_relay_boot_count")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(r.Registry())
	require.NoError(t, err)
	assert.Equal(t, 8, n, "two relays, two buttons and four scalar gauges")
}
