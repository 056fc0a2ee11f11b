//go:build !linux

package gpio

import "errors"

// CdevPort is not available on non-Linux platforms.
type CdevPort struct{}

// OpenCdev returns an error on non-Linux platforms.
func OpenCdev(chip string, buttons, relays [Lines]int) (*CdevPort, error) {
	return nil, errors.New("gpio: character device not supported on this platform (requires Linux)")
}

// OpenCdevInputs returns an error on non-Linux platforms.
func OpenCdevInputs(chip string, buttons [Lines]int) (*CdevPort, error) {
	return nil, errors.New("gpio: character device not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (p *CdevPort) Read() ([Lines]bool, error) {
	return [Lines]bool{}, errors.New("gpio: not supported")
}

// Set is not implemented on non-Linux platforms.
func (p *CdevPort) Set(index int, active bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *CdevPort) Close() error {
	return nil
}
