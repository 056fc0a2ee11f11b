package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/dual-relay/internal/eeprom"
	"github.com/sweeney/dual-relay/internal/gpio"
	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/mqtt"
	"github.com/sweeney/dual-relay/internal/node"
	"github.com/sweeney/dual-relay/internal/system"
)

const pollInterval = 10 * time.Millisecond

// device is one power cycle: fresh collaborators except for the store file.
type device struct {
	ctrl  *node.Controller
	port  *gpio.FakePort
	msg   *mqtt.FakeClient
	reset *system.FakeResetter
	now   time.Time
}

func powerOn(t *testing.T, storePath string, samples []gpio.Sample, connected bool) *device {
	t.Helper()
	store, err := eeprom.OpenFile(storePath, eeprom.DefaultSize)
	require.NoError(t, err)

	d := &device{
		port:  gpio.NewFakePort(samples),
		msg:   mqtt.NewFakeClient(),
		reset: &system.FakeResetter{},
		now:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	d.msg.Connected = connected
	d.ctrl = node.New(node.Config{
		ButtonPins: gpio.DefaultButtonPins,
		RelayPins:  gpio.DefaultRelayPins,
		Watchdog:   logic.WatchdogConfig{Threshold: logic.DefaultThreshold},
		Clock:      func() time.Time { return d.now },
	}, d.port, d.msg, store, d.reset, nil)
	d.ctrl.Boot()
	return d
}

// runFor ticks the device for the given duration at the poll interval.
func (d *device) runFor(t *testing.T, dur time.Duration) {
	t.Helper()
	for end := d.now.Add(dur); !d.now.After(end); d.now = d.now.Add(pollInterval) {
		levels, err := d.port.Read()
		require.NoError(t, err)
		d.ctrl.Tick(d.now, levels[:])
	}
}

// TestIntegrationBootLoopRecovery powers the device on repeatedly without a
// broker. The third boot is suspect and forces a reset after 20s offline; the
// boot after that starts from a clean count.
func TestIntegrationBootLoopRecovery(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "eeprom.bin")
	idle := []gpio.Sample{gpio.Released}

	for boot := 1; boot <= 2; boot++ {
		d := powerOn(t, storePath, idle, false)
		assert.Equal(t, logic.ModeNormal, d.ctrl.State().Mode, "boot %d", boot)
		d.runFor(t, 30*time.Second)
		assert.Zero(t, d.reset.Calls, "boot %d", boot)
	}

	d := powerOn(t, storePath, idle, false)
	s := d.ctrl.State()
	require.Equal(t, uint8(3), s.BootCount)
	require.Equal(t, logic.ModeSuspect, s.Mode)

	d.runFor(t, 19*time.Second)
	assert.Zero(t, d.reset.Calls)
	d.runFor(t, 2*time.Second)
	assert.Equal(t, 1, d.reset.Calls)

	d = powerOn(t, storePath, idle, false)
	assert.Equal(t, uint8(1), d.ctrl.State().BootCount)
	assert.Equal(t, logic.ModeNormal, d.ctrl.State().Mode)
}

// TestIntegrationConnectClearsCount checks that a connection on a suspect
// boot persists a zero count, so the next boot is normal.
func TestIntegrationConnectClearsCount(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "eeprom.bin")
	idle := []gpio.Sample{gpio.Released}

	for boot := 1; boot <= 4; boot++ {
		powerOn(t, storePath, idle, false)
	}

	d := powerOn(t, storePath, idle, true)
	require.Equal(t, logic.ModeSuspect, d.ctrl.State().Mode)
	d.ctrl.OnConnected()
	d.runFor(t, time.Minute)
	assert.Zero(t, d.reset.Calls)

	d = powerOn(t, storePath, idle, true)
	assert.Equal(t, uint8(1), d.ctrl.State().BootCount)
}

// TestIntegrationButtonsAndRelays drives a press and release on both buttons
// while a momentary pulse runs, and checks what reaches the broker.
func TestIntegrationButtonsAndRelays(t *testing.T) {
	var samples []gpio.Sample
	add := func(s gpio.Sample, d time.Duration) {
		for i := 0; i < int(d/pollInterval); i++ {
			samples = append(samples, s)
		}
	}
	add(gpio.Released, 100*time.Millisecond)
	add(gpio.Sample{false, true}, 30*time.Millisecond) // glitch on button0
	add(gpio.Released, 100*time.Millisecond)
	add(gpio.Sample{false, false}, 200*time.Millisecond) // both pressed
	add(gpio.Released, 200*time.Millisecond)

	d := powerOn(t, filepath.Join(t.TempDir(), "eeprom.bin"), samples, true)
	d.ctrl.OnConnected()
	d.ctrl.OnPropertySet("relay1momentary", "true")

	d.runFor(t, 2*time.Second)

	assert.Equal(t, []string{"false", "true", "false"}, d.msg.Values("button0"))
	assert.Equal(t, []string{"false", "true", "false"}, d.msg.Values("button1"))
	assert.Equal(t, []string{"false", "true", "false"}, d.msg.Values("relay1"), "connect echo, pulse, auto-off")
	assert.False(t, d.port.Outputs[1])

	dev := mqtt.Device{BaseTopic: mqtt.DefaultBaseTopic, ID: "dual-relay"}
	for _, e := range d.msg.Emitted {
		assert.Contains(t, []string{
			"homie/dual-relay/dual/button0",
			"homie/dual-relay/dual/button1",
			"homie/dual-relay/dual/relay0",
			"homie/dual-relay/dual/relay1",
		}, dev.PropertyTopic(e.Property))
	}
}
