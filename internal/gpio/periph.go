package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPort drives the module through periph.io, for boards where the
// character device is unavailable.
type PeriphPort struct {
	buttons [Lines]pgpio.PinIO
	relays  [Lines]pgpio.PinIO
}

// OpenPeriph initialises the periph host and configures both buttons and both relays.
func OpenPeriph(buttons, relays [Lines]int) (*PeriphPort, error) {
	p, err := OpenPeriphInputs(buttons)
	if err != nil {
		return nil, err
	}
	for i, n := range relays {
		pin, err := periphPin(n)
		if err != nil {
			return nil, fmt.Errorf("relay%d: %w", i, err)
		}
		if err := pin.Out(pgpio.Low); err != nil {
			return nil, fmt.Errorf("configure relay%d pin %d: %w", i, n, err)
		}
		p.relays[i] = pin
	}
	return p, nil
}

// OpenPeriphInputs configures only the button inputs.
func OpenPeriphInputs(buttons [Lines]int) (*PeriphPort, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	p := &PeriphPort{}
	for i, n := range buttons {
		pin, err := periphPin(n)
		if err != nil {
			return nil, fmt.Errorf("button%d: %w", i, err)
		}
		if err := pin.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure button%d pin %d: %w", i, n, err)
		}
		p.buttons[i] = pin
	}
	return p, nil
}

func periphPin(n int) (pgpio.PinIO, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if pin == nil {
		return nil, fmt.Errorf("pin GPIO%d not found", n)
	}
	return pin, nil
}

// Read returns the raw levels of both buttons.
func (p *PeriphPort) Read() ([Lines]bool, error) {
	var levels [Lines]bool
	for i, pin := range p.buttons {
		levels[i] = pin.Read() == pgpio.High
	}
	return levels, nil
}

// Set drives relay index.
func (p *PeriphPort) Set(index int, active bool) error {
	if err := validIndex(index); err != nil {
		return err
	}
	pin := p.relays[index]
	if pin == nil {
		return fmt.Errorf("relay%d not configured", index)
	}
	if err := pin.Out(pgpio.Level(active)); err != nil {
		return fmt.Errorf("set relay%d: %w", index, err)
	}
	return nil
}

// Close drops both relays. periph keeps no per-pin handles to release.
func (p *PeriphPort) Close() error {
	var errs []error
	for i, pin := range p.relays {
		if pin == nil {
			continue
		}
		if err := pin.Out(pgpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("drop relay%d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
