// Package system provides the device reset primitive used by the reboot watchdog.
package system

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Reset modes.
const (
	// ModeReboot restarts the whole machine.
	ModeReboot = "reboot"
	// ModeExit terminates the process and leaves the restart to the supervisor.
	ModeExit = "exit"
)

// ExitCode is the status used by ModeExit.
const ExitCode = 75

// Rebooter performs a hard reset.
type Rebooter struct {
	mode string
	log  logrus.FieldLogger

	hooks []func()

	// Overridable for tests.
	reboot func() error
	exit   func(code int)
}

// NewRebooter creates a Rebooter for the given mode.
func NewRebooter(mode string, log logrus.FieldLogger) (*Rebooter, error) {
	if mode == "" {
		mode = ModeReboot
	}
	if mode != ModeReboot && mode != ModeExit {
		return nil, fmt.Errorf("unknown reset mode %q", mode)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Rebooter{
		mode:   mode,
		log:    log.WithField("component", "reset"),
		reboot: reboot,
		exit:   os.Exit,
	}, nil
}

// Mode returns the configured reset mode.
func (r *Rebooter) Mode() string {
	return r.mode
}

// BeforeReset registers fn to run before a forced reset. Deferred cleanup
// does not run on either reset path, so shutdown work goes here.
func (r *Rebooter) BeforeReset(fn func()) {
	r.hooks = append(r.hooks, fn)
}

// ForceReset runs the registered hooks in order and restarts the device.
// On success it does not return.
func (r *Rebooter) ForceReset() error {
	for _, fn := range r.hooks {
		fn()
	}
	switch r.mode {
	case ModeExit:
		r.log.Warnf("exiting with status %d for restart", ExitCode)
		r.exit(ExitCode)
		return nil
	default:
		r.log.Warn("rebooting")
		if err := r.reboot(); err != nil {
			return fmt.Errorf("reboot: %w", err)
		}
		return nil
	}
}

// FakeResetter records reset requests.
type FakeResetter struct {
	Calls int
	Err   error
	// OnReset, if set, runs on every call.
	OnReset func()
}

// ForceReset counts the call and returns Err.
func (f *FakeResetter) ForceReset() error {
	f.Calls++
	if f.OnReset != nil {
		f.OnReset()
	}
	return f.Err
}
