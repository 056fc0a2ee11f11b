// Package status provides a thread-safe status tracker for the dual-relay daemon.
// The run loop writes it once per tick; HTTP handlers read it.
package status

import (
	"os"
	"sync"
	"time"

	"github.com/sweeney/dual-relay/internal/node"
)

// NetworkInfo contains network state written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs            int64
	DebounceMs        int64
	MomentaryMs       int64
	StatsIntervalS    int64
	Broker            string
	DeviceID          string
	BaseTopic         string
	HTTPAddr          string
	Threshold         uint8
	MaxDisconnectedMs int64
	ResetMode         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Node      node.State
	Ready     bool
	StartTime time.Time
	Now       time.Time
	Network   *NetworkInfo
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// MomentaryRemaining returns how long relay i stays on, or 0 if it is not pulsing.
func (s Snapshot) MomentaryRemaining(i int) time.Duration {
	if i < 0 || i >= len(s.Node.Relays) {
		return 0
	}
	r := s.Node.Relays[i]
	if !r.Momentary() || !s.Now.Before(r.Deadline) {
		return 0
	}
	return r.Deadline.Sub(s.Now)
}

// DisconnectedFor returns how long the watchdog has seen the broker down.
func (s Snapshot) DisconnectedFor() time.Duration {
	if s.Node.DisconnectedSince.IsZero() {
		return 0
	}
	return s.Now.Sub(s.Node.DisconnectedSince)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update stores the node state. Called from runLoop on every tick.
func (t *Tracker) Update(st node.State) {
	t.mu.Lock()
	t.snap.Node = st
	t.snap.Ready = true
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// ReadNetworkInfo reads network state from the environment, or returns nil
// when pi-helper has not set it.
func ReadNetworkInfo() *NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
