package logic

import "time"

// Heartbeat decides when the periodic uptime report is due.
type Heartbeat struct {
	interval  time.Duration
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a heartbeat. An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, startTime time.Time) *Heartbeat {
	return &Heartbeat{
		interval:  interval,
		startTime: startTime,
		last:      startTime,
	}
}

// Due returns the uptime if the interval has elapsed since the last report
// (or startup), and false otherwise.
func (h *Heartbeat) Due(now time.Time) (time.Duration, bool) {
	if h.interval <= 0 {
		return 0, false
	}
	if now.Sub(h.last) < h.interval {
		return 0, false
	}
	h.last = now
	return now.Sub(h.startTime), true
}

// Interval returns the configured interval.
func (h *Heartbeat) Interval() time.Duration {
	return h.interval
}
