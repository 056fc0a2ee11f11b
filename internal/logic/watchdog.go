package logic

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode is the watchdog state, decided once per boot from the boot count.
type Mode string

const (
	ModeNormal  Mode = "NORMAL"
	ModeSuspect Mode = "SUSPECT"
)

// WatchdogConfig holds the reboot watchdog policy.
type WatchdogConfig struct {
	// Threshold is the boot count at which connectivity monitoring starts.
	Threshold uint8
	// MaxDisconnected is how long a SUSPECT device may stay offline.
	MaxDisconnected time.Duration
	// Address of the boot counter byte in the store.
	Address int
}

// Watchdog counts boots in persistent storage and forces a reset when a
// device that keeps rebooting also stays disconnected for too long.
type Watchdog struct {
	cfg   WatchdogConfig
	store ByteStore
	reset Resetter
	log   logrus.FieldLogger

	bootCount         uint8
	mode              Mode
	disconnectedSince time.Time
	fired             bool
}

// NewWatchdog creates a watchdog. Call Boot once at startup.
func NewWatchdog(cfg WatchdogConfig, store ByteStore, reset Resetter, log logrus.FieldLogger) *Watchdog {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxDisconnected <= 0 {
		cfg.MaxDisconnected = DefaultMaxDisconnected
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watchdog{
		cfg:   cfg,
		store: store,
		reset: reset,
		log:   log.WithField("component", "watchdog"),
		mode:  ModeNormal,
	}
}

// Boot increments the persisted boot count and commits it straight away, so a
// crash loop is recorded even if the device never gets further than this.
// It returns the new count.
func (w *Watchdog) Boot() uint8 {
	count := w.store.Get(w.cfg.Address)
	if count < math.MaxUint8 {
		count++
	}
	w.persist(count)
	w.bootCount = count

	if count >= w.cfg.Threshold {
		w.mode = ModeSuspect
		w.log.Warnf("boot count %d reached threshold %d, monitoring connectivity", count, w.cfg.Threshold)
	} else {
		w.mode = ModeNormal
		w.log.Infof("boot count %d", count)
	}
	return count
}

// OnConnected records a successful connection by zeroing the persisted count.
// The mode for this boot is unchanged; the next boot starts NORMAL.
func (w *Watchdog) OnConnected() {
	if w.store.Get(w.cfg.Address) == 0 {
		return
	}
	w.persist(0)
	w.log.Info("connected, boot count reset")
}

// Check runs the disconnect timer. It does nothing unless the device is
// SUSPECT and the messaging layer is configured. Once a reset has been forced
// it never fires again.
func (w *Watchdog) Check(now time.Time, configured, connected bool) {
	if w.mode != ModeSuspect || w.fired || !configured {
		return
	}

	if connected {
		if !w.disconnectedSince.IsZero() {
			w.log.Infof("reconnected after %v", now.Sub(w.disconnectedSince))
		}
		w.disconnectedSince = time.Time{}
		return
	}

	if w.disconnectedSince.IsZero() {
		w.disconnectedSince = now
		w.log.Warnf("disconnected, forcing reset in %v", w.cfg.MaxDisconnected)
		return
	}

	if now.Sub(w.disconnectedSince) < w.cfg.MaxDisconnected {
		return
	}

	w.fired = true
	w.log.Errorf("disconnected for %v after %d boots, forcing reset", now.Sub(w.disconnectedSince), w.bootCount)
	w.persist(0)
	if w.reset == nil {
		return
	}
	if err := w.reset.ForceReset(); err != nil {
		w.log.Errorf("force reset: %v", err)
	}
}

// Mode returns the mode decided at boot.
func (w *Watchdog) Mode() Mode {
	return w.mode
}

// BootCount returns the count recorded by Boot.
func (w *Watchdog) BootCount() uint8 {
	return w.bootCount
}

// PersistedCount reads the count currently held in the store.
func (w *Watchdog) PersistedCount() uint8 {
	return w.store.Get(w.cfg.Address)
}

// DisconnectedSince returns when the current disconnection was first seen,
// or the zero time.
func (w *Watchdog) DisconnectedSince() time.Time {
	return w.disconnectedSince
}

// Fired reports whether a reset has been forced.
func (w *Watchdog) Fired() bool {
	return w.fired
}

// persist writes and commits the count. A failed commit is logged only.
func (w *Watchdog) persist(count uint8) {
	w.store.Put(w.cfg.Address, count)
	if err := w.store.Commit(); err != nil {
		w.log.Warnf("commit boot count %d: %v", count, err)
	}
}
