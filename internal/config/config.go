// Package config loads the daemon's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/dual-relay/internal/eeprom"
	"github.com/sweeney/dual-relay/internal/gpio"
	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/mqtt"
	"github.com/sweeney/dual-relay/internal/system"
)

// DefaultPath is where install puts the config file.
const DefaultPath = "/etc/dual-relay.toml"

const (
	DefaultPollIntervalMs = 10
	DefaultStorePath      = "/var/lib/dual-relay/eeprom.bin"
	DefaultDeviceID       = "dual-relay"
	DefaultHTTPAddr       = ":8080"
	DefaultBufferSize     = 64
)

type Config struct {
	LogLevel       string
	PollIntervalMs int64
	DebounceMs     int64
	MomentaryMs    int64

	GPIO     GPIO
	MQTT     MQTT
	Watchdog Watchdog
	HTTP     HTTP
}

type GPIO struct {
	// Driver is "cdev" or "periph".
	Driver     string
	Chip       string
	ButtonPins []int
	RelayPins  []int
}

type MQTT struct {
	// Broker is a paho URL such as tcp://host:1883. Empty runs offline.
	Broker         string
	BaseTopic      string
	DeviceID       string
	DeviceName     string
	Username       string
	Password       string
	StatsIntervalS int64
	BufferSize     int
}

type Watchdog struct {
	Threshold         uint8
	MaxDisconnectedMs int64
	StorePath         string
	StoreSize         int
	Address           int
	// ResetMode is "reboot" or "exit".
	ResetMode string
}

type HTTP struct {
	// Addr is the status page listen address. Empty disables it.
	Addr string
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	var c Config
	c.HTTP.Addr = DefaultHTTPAddr
	c.applyDefaults()
	return c
}

// Load reads path, fills in defaults and validates the result.
func Load(path string) (Config, error) {
	c := Config{HTTP: HTTP{Addr: DefaultHTTPAddr}}
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.Warnf("config %s: unknown keys %v", path, undecoded)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does
// not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("config %s not found, using defaults", path)
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = logic.DefaultDebounce.Milliseconds()
	}
	if c.MomentaryMs <= 0 {
		c.MomentaryMs = logic.DefaultMomentary.Milliseconds()
	}

	if c.GPIO.Driver == "" {
		c.GPIO.Driver = gpio.DriverCdev
	}
	if len(c.GPIO.ButtonPins) == 0 {
		c.GPIO.ButtonPins = append([]int(nil), gpio.DefaultButtonPins[:]...)
	}
	if len(c.GPIO.RelayPins) == 0 {
		c.GPIO.RelayPins = append([]int(nil), gpio.DefaultRelayPins[:]...)
	}

	if c.MQTT.BaseTopic == "" {
		c.MQTT.BaseTopic = mqtt.DefaultBaseTopic
	}
	if c.MQTT.DeviceID == "" {
		c.MQTT.DeviceID = DefaultDeviceID
	}
	if c.MQTT.DeviceName == "" {
		c.MQTT.DeviceName = c.MQTT.DeviceID
	}
	if c.MQTT.StatsIntervalS <= 0 {
		c.MQTT.StatsIntervalS = int64(logic.DefaultHeartbeat / time.Second)
	}
	if c.MQTT.BufferSize <= 0 {
		c.MQTT.BufferSize = DefaultBufferSize
	}

	if c.Watchdog.Threshold == 0 {
		c.Watchdog.Threshold = logic.DefaultThreshold
	}
	if c.Watchdog.MaxDisconnectedMs <= 0 {
		c.Watchdog.MaxDisconnectedMs = logic.DefaultMaxDisconnected.Milliseconds()
	}
	if c.Watchdog.StorePath == "" {
		c.Watchdog.StorePath = DefaultStorePath
	}
	if c.Watchdog.StoreSize <= 0 {
		c.Watchdog.StoreSize = eeprom.DefaultSize
	}
	if c.Watchdog.ResetMode == "" {
		c.Watchdog.ResetMode = system.ModeReboot
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LogLevel: %w", err)
	}

	switch c.GPIO.Driver {
	case gpio.DriverCdev, gpio.DriverPeriph:
	default:
		return fmt.Errorf("GPIO.Driver: unknown driver %q", c.GPIO.Driver)
	}
	if len(c.GPIO.ButtonPins) != gpio.Lines {
		return fmt.Errorf("GPIO.ButtonPins: want %d pins, got %d", gpio.Lines, len(c.GPIO.ButtonPins))
	}
	if len(c.GPIO.RelayPins) != gpio.Lines {
		return fmt.Errorf("GPIO.RelayPins: want %d pins, got %d", gpio.Lines, len(c.GPIO.RelayPins))
	}
	seen := make(map[int]bool, 2*gpio.Lines)
	for _, pin := range append(append([]int{}, c.GPIO.ButtonPins...), c.GPIO.RelayPins...) {
		if pin < 0 {
			return fmt.Errorf("GPIO: negative pin %d", pin)
		}
		if seen[pin] {
			return fmt.Errorf("GPIO: pin %d used twice", pin)
		}
		seen[pin] = true
	}

	if c.Watchdog.Address < 0 || c.Watchdog.Address >= c.Watchdog.StoreSize {
		return fmt.Errorf("Watchdog.Address %d outside store of %d bytes", c.Watchdog.Address, c.Watchdog.StoreSize)
	}
	switch c.Watchdog.ResetMode {
	case system.ModeReboot, system.ModeExit:
	default:
		return fmt.Errorf("Watchdog.ResetMode: unknown mode %q", c.Watchdog.ResetMode)
	}
	return nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c Config) Momentary() time.Duration {
	return time.Duration(c.MomentaryMs) * time.Millisecond
}

func (c Config) StatsInterval() time.Duration {
	return time.Duration(c.MQTT.StatsIntervalS) * time.Second
}

func (c Config) MaxDisconnected() time.Duration {
	return time.Duration(c.Watchdog.MaxDisconnectedMs) * time.Millisecond
}

// Level returns the parsed log level. Validate has already checked it.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// ButtonPins returns the button pins as a fixed array.
func (c Config) ButtonPins() [gpio.Lines]int {
	var pins [gpio.Lines]int
	copy(pins[:], c.GPIO.ButtonPins)
	return pins
}

// RelayPins returns the relay pins as a fixed array.
func (c Config) RelayPins() [gpio.Lines]int {
	var pins [gpio.Lines]int
	copy(pins[:], c.GPIO.RelayPins)
	return pins
}

// WatchdogConfig converts the [Watchdog] table for the core.
func (c Config) WatchdogConfig() logic.WatchdogConfig {
	return logic.WatchdogConfig{
		Threshold:       c.Watchdog.Threshold,
		MaxDisconnected: c.MaxDisconnected(),
		Address:         c.Watchdog.Address,
	}
}

// Device returns the Homie device described by the [MQTT] table.
func (c Config) Device() mqtt.Device {
	return mqtt.Device{
		BaseTopic: c.MQTT.BaseTopic,
		ID:        c.MQTT.DeviceID,
		Name:      c.MQTT.DeviceName,
	}
}
