// Package logic contains the control core of the dual relay module:
// button debouncing, relay actuation and the reboot watchdog.
// This package has NO GPIO, MQTT or OS dependencies. Time is always injectable
// via time.Time parameters; collaborators are reached through small interfaces.
package logic

import "time"

// Channels is the number of buttons and relays on the module.
const Channels = 2

// Defaults for the timing and watchdog policy.
const (
	DefaultDebounce        = 60 * time.Millisecond
	DefaultMomentary       = 1000 * time.Millisecond
	DefaultThreshold       = 3
	DefaultMaxDisconnected = 20 * time.Second
	DefaultHeartbeat       = 60 * time.Second
)

// Edge is a debounced button transition waiting to be published.
type Edge struct {
	Channel int
	Pressed bool // logical state, true = pressed (raw line low)
	Time    time.Time
}

// Outputs drives the relay lines. Index is 0 or 1; active means energised.
type Outputs interface {
	Set(index int, active bool) error
}

// ByteStore is the persistent storage primitive: one byte per address plus an
// explicit commit that makes previous writes durable.
type ByteStore interface {
	Get(addr int) byte
	Put(addr int, b byte)
	Commit() error
}

// Resetter restarts the device.
type Resetter interface {
	ForceReset() error
}

// ValidIndex reports whether i addresses a button or relay.
func ValidIndex(i int) bool {
	return i >= 0 && i < Channels
}
