// Package node composes the control core into the module's single node:
// one cooperative tick per loop iteration plus the handlers the messaging
// side calls on connection and on property writes.
package node

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/dual-relay/internal/logic"
)

// Messenger is the messaging collaborator.
type Messenger interface {
	Emitter
	IsConfigured() bool
	IsConnected() bool
}

// Handler is what the messaging side invokes. Calls must come from the
// goroutine that runs Tick.
type Handler interface {
	OnConnected()
	OnPropertySet(name, value string) bool
}

// Observer is told about edges and commands, for metrics.
type Observer interface {
	ObserveEdge(e logic.Edge)
	ObserveCommand(property string, handled bool)
}

// Config holds the node's pins and timing.
type Config struct {
	ButtonPins [logic.Channels]int
	RelayPins  [logic.Channels]int
	Debounce   time.Duration
	Momentary  time.Duration
	Watchdog   logic.WatchdogConfig

	// Clock times property writes. Defaults to time.Now.
	Clock func() time.Time
}

// State is a copy of everything the node knows, for status and metrics.
type State struct {
	Buttons           [logic.Channels]bool
	Relays            [logic.Channels]logic.RelayChannel
	BootCount         uint8
	PersistedCount    uint8
	Mode              logic.Mode
	DisconnectedSince time.Time
	ResetForced       bool
	Configured        bool
	Connected         bool
}

// Controller owns all core state. It is not safe for concurrent use; the run
// loop is its only caller.
type Controller struct {
	buttons   []*logic.ButtonChannel
	relays    *logic.Actuator
	watchdog  *logic.Watchdog
	publisher *Publisher
	msg       Messenger
	observer  Observer
	commands  map[string]command
	now       func() time.Time
	log       logrus.FieldLogger
}

var _ Handler = (*Controller)(nil)

// New wires the core to its collaborators.
func New(cfg Config, out logic.Outputs, msg Messenger, store logic.ByteStore, reset logic.Resetter, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	relays := logic.NewActuator(cfg.RelayPins, out, cfg.Momentary, log)
	if reset != nil {
		reset = releaseFirst{relays: relays, next: reset}
	}

	c := &Controller{
		relays:    relays,
		watchdog:  logic.NewWatchdog(cfg.Watchdog, store, reset, log),
		publisher: NewPublisher(msg, log),
		msg:       msg,
		commands:  commandTable(),
		now:       cfg.Clock,
		log:       log.WithField("component", "node"),
	}
	for i, pin := range cfg.ButtonPins {
		c.buttons = append(c.buttons, logic.NewButtonChannel(i, pin, cfg.Debounce))
	}
	return c
}

// SetObserver registers an observer. nil disables observation.
func (c *Controller) SetObserver(o Observer) {
	c.observer = o
}

// Boot runs the cold boot sequence: relays off, boot count incremented.
func (c *Controller) Boot() uint8 {
	c.relays.AllOff()
	return c.watchdog.Boot()
}

// Release drives both relays low and cancels any pulse. Used on shutdown.
func (c *Controller) Release() {
	c.relays.AllOff()
}

// releaseFirst drives the relays low before a forced reset, which may
// never return.
type releaseFirst struct {
	relays *logic.Actuator
	next   logic.Resetter
}

func (r releaseFirst) ForceReset() error {
	r.relays.AllOff()
	return r.next.ForceReset()
}

// Tick runs one iteration: poll inputs, debounce, momentary timers, watchdog,
// then publish pending edges. raw holds the button line levels; nil means the
// inputs could not be read this tick and input polling is skipped.
func (c *Controller) Tick(now time.Time, raw []bool) {
	if raw != nil {
		for i, b := range c.buttons {
			if i >= len(raw) {
				break
			}
			e, ok := b.Poll(raw[i], now)
			if !ok {
				continue
			}
			c.log.WithField("button", e.Channel).Debugf("pressed=%v", e.Pressed)
			if c.observer != nil {
				c.observer.ObserveEdge(e)
			}
		}
	}

	for _, i := range c.relays.TickMomentary(now) {
		c.log.WithField("relay", i).Debug("pulse ended")
		c.echoRelay(i)
	}

	c.watchdog.Check(now, c.msg.IsConfigured(), c.msg.IsConnected())

	c.publisher.Flush(c.buttons)
}

// OnConnected handles a successful connection to the broker.
func (c *Controller) OnConnected() {
	c.watchdog.OnConnected()
	for i := 0; i < logic.Channels; i++ {
		c.echoRelay(i)
	}
}

// OnPropertySet handles a write to a settable property and reports whether
// the property exists.
func (c *Controller) OnPropertySet(name, value string) bool {
	cmd, ok := c.commands[name]
	if c.observer != nil {
		c.observer.ObserveCommand(name, ok)
	}
	if !ok {
		c.log.Debugf("unknown property %q", name)
		return false
	}

	active := ParseBool(value)
	log := c.log.WithField("relay", cmd.relay)
	if cmd.momentary && active {
		log.Debug("pulse")
		c.relays.PulseRelay(cmd.relay, c.now())
	} else {
		// A false momentary write cancels the pulse
		log.Debugf("set %v", active)
		c.relays.SetRelay(cmd.relay, active)
	}
	c.echoRelay(cmd.relay)
	return true
}

func (c *Controller) echoRelay(i int) {
	r, ok := c.relays.Relay(i)
	if !ok {
		return
	}
	c.msg.Emit(RelayProperty(i), FormatBool(r.Active))
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := State{
		Relays:            c.relays.Relays(),
		BootCount:         c.watchdog.BootCount(),
		PersistedCount:    c.watchdog.PersistedCount(),
		Mode:              c.watchdog.Mode(),
		DisconnectedSince: c.watchdog.DisconnectedSince(),
		ResetForced:       c.watchdog.Fired(),
		Configured:        c.msg.IsConfigured(),
		Connected:         c.msg.IsConnected(),
	}
	for i, b := range c.buttons {
		s.Buttons[i] = b.Pressed
	}
	return s
}
