// Package gpio provides button input reading and relay output driving with
// hardware abstraction.
// The real implementations use the Linux GPIO character device (default) or periph.io.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Lines is the number of button inputs and relay outputs.
const Lines = 2

// Reader reads the button inputs.
type Reader interface {
	// Read returns the raw line levels of both buttons (true = high).
	// Inputs are pulled up, so a pressed button reads low.
	Read() ([Lines]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the relay outputs.
type Writer interface {
	// Set drives relay index high (active) or low.
	Set(index int, active bool) error

	// Close releases GPIO resources.
	Close() error
}

// Port is both halves of the module's pin I/O.
type Port interface {
	Reader
	Writer
}

// Drivers.
const (
	DriverCdev   = "cdev"
	DriverPeriph = "periph"
)

// Default pin definitions (BCM numbering)
var (
	DefaultButtonPins = [Lines]int{17, 27}
	DefaultRelayPins  = [Lines]int{22, 23}
)

// Open opens a port using the named driver. chip is only used by cdev.
func Open(driver, chip string, buttons, relays [Lines]int) (Port, error) {
	switch driver {
	case DriverCdev, "":
		p, err := OpenCdev(chip, buttons, relays)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverPeriph:
		p, err := OpenPeriph(buttons, relays)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown gpio driver %q", driver)
	}
}

// OpenInputs opens only the button inputs, leaving the relay lines untouched.
func OpenInputs(driver, chip string, buttons [Lines]int) (Reader, error) {
	switch driver {
	case DriverCdev, "":
		p, err := OpenCdevInputs(chip, buttons)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverPeriph:
		p, err := OpenPeriphInputs(buttons)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown gpio driver %q", driver)
	}
}

func validIndex(index int) error {
	if index < 0 || index >= Lines {
		return fmt.Errorf("relay index %d out of range", index)
	}
	return nil
}
