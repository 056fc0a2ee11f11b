package logic

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RelayChannel is the state of one relay output.
type RelayChannel struct {
	Pin    int
	Active bool
	// Deadline is when a momentary pulse ends. Zero when not in momentary mode.
	Deadline time.Time
}

// Momentary reports whether a pulse is armed.
func (r RelayChannel) Momentary() bool {
	return !r.Deadline.IsZero()
}

// Actuator drives both relays and runs the momentary pulse timers.
type Actuator struct {
	relays    [Channels]RelayChannel
	out       Outputs
	momentary time.Duration
	log       logrus.FieldLogger
}

// NewActuator creates an actuator writing to out. Pulses last for momentary.
func NewActuator(pins [Channels]int, out Outputs, momentary time.Duration, log logrus.FieldLogger) *Actuator {
	if momentary <= 0 {
		momentary = DefaultMomentary
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &Actuator{
		out:       out,
		momentary: momentary,
		log:       log.WithField("component", "relay"),
	}
	for i, pin := range pins {
		a.relays[i].Pin = pin
	}
	return a
}

// SetRelay sets a sustained state and cancels any pending pulse.
// Out of range indices are ignored.
func (a *Actuator) SetRelay(index int, active bool) {
	if !ValidIndex(index) {
		return
	}
	r := &a.relays[index]
	r.Active = active
	r.Deadline = time.Time{}
	a.drive(index)
}

// PulseRelay energises the relay and arms the auto-off deadline. Pulsing an
// already pulsing relay moves the deadline rather than adding a second one.
func (a *Actuator) PulseRelay(index int, now time.Time) {
	if !ValidIndex(index) {
		return
	}
	r := &a.relays[index]
	r.Active = true
	r.Deadline = now.Add(a.momentary)
	a.drive(index)
}

// TickMomentary releases every relay whose pulse has elapsed and returns
// their indices.
func (a *Actuator) TickMomentary(now time.Time) []int {
	var released []int
	for i := range a.relays {
		r := &a.relays[i]
		if r.Deadline.IsZero() || now.Before(r.Deadline) {
			continue
		}
		r.Active = false
		r.Deadline = time.Time{}
		a.drive(i)
		released = append(released, i)
	}
	return released
}

// AllOff drops both relays and clears their deadlines.
func (a *Actuator) AllOff() {
	for i := range a.relays {
		a.SetRelay(i, false)
	}
}

// Relay returns the state of one relay.
func (a *Actuator) Relay(index int) (RelayChannel, bool) {
	if !ValidIndex(index) {
		return RelayChannel{}, false
	}
	return a.relays[index], true
}

// Relays returns a copy of both relay states.
func (a *Actuator) Relays() [Channels]RelayChannel {
	return a.relays
}

func (a *Actuator) drive(index int) {
	if a.out == nil {
		return
	}
	if err := a.out.Set(index, a.relays[index].Active); err != nil {
		a.log.WithField("relay", index).Warnf("set output: %v", err)
	}
}
