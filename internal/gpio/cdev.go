//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevPort drives the module through the Linux GPIO character device.
type CdevPort struct {
	chip    *gpiocdev.Chip
	buttons *gpiocdev.Lines
	relays  [Lines]*gpiocdev.Line
}

// OpenCdev requests both button inputs (pull-up) and both relay outputs
// (initially low) on the named chip.
func OpenCdev(chip string, buttons, relays [Lines]int) (*CdevPort, error) {
	p, err := openCdevInputs(chip, buttons)
	if err != nil {
		return nil, err
	}

	for i, pin := range relays {
		line, err := p.chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request relay%d pin %d: %w", i, pin, err)
		}
		p.relays[i] = line
	}
	return p, nil
}

// OpenCdevInputs requests only the button inputs.
func OpenCdevInputs(chip string, buttons [Lines]int) (*CdevPort, error) {
	return openCdevInputs(chip, buttons)
}

func openCdevInputs(chipName string, buttons [Lines]int) (*CdevPort, error) {
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines(buttons[:], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %v: %w", buttons, err)
	}

	return &CdevPort{chip: chip, buttons: lines}, nil
}

// Read returns the raw levels of both buttons.
func (p *CdevPort) Read() ([Lines]bool, error) {
	var levels [Lines]bool
	vals := make([]int, Lines)
	if err := p.buttons.Values(vals); err != nil {
		return levels, fmt.Errorf("read button pins: %w", err)
	}
	for i, v := range vals {
		levels[i] = v != 0
	}
	return levels, nil
}

// Set drives relay index.
func (p *CdevPort) Set(index int, active bool) error {
	if err := validIndex(index); err != nil {
		return err
	}
	line := p.relays[index]
	if line == nil {
		return fmt.Errorf("relay%d not requested", index)
	}
	v := 0
	if active {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set relay%d: %w", index, err)
	}
	return nil
}

// Close releases GPIO resources.
// Relays are driven low before their lines are released so nothing is left
// energised across a restart.
func (p *CdevPort) Close() error {
	var errs []error

	for i, line := range p.relays {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drop relay%d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay%d: %w", i, err))
		}
		p.relays[i] = nil
	}
	if p.buttons != nil {
		if err := p.buttons.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
		p.buttons = nil
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		p.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
