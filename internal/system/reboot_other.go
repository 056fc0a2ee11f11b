//go:build !linux

package system

import "errors"

func reboot() error {
	return errors.New("reboot not supported on this platform")
}
