package config

// DefaultFile is written by install when no config exists yet.
const DefaultFile = `# dual-relay configuration
# Pins are BCM line offsets on the GPIO chip

LogLevel = "info"
PollIntervalMs = 10

# A button level must hold this long before it is accepted
DebounceMs = 60

# How long a relayNmomentary pulse keeps the relay closed
MomentaryMs = 1000

[GPIO]
	# "cdev" (character device) or "periph"
	Driver = "cdev"
	Chip = "gpiochip0"
	ButtonPins = [17, 27]
	RelayPins = [22, 23]

[MQTT]
	# Leave empty to run without a broker
	Broker = "tcp://localhost:1883"
	BaseTopic = "homie/"
	DeviceID = "dual-relay"
	DeviceName = "Dual relay"
	# Username = ""
	# Password = ""
	StatsIntervalS = 60
	BufferSize = 64

[Watchdog]
	# Boots without a broker connection before the device is suspect
	Threshold = 3
	# A suspect device that stays offline this long is reset
	MaxDisconnectedMs = 20000
	StorePath = "/var/lib/dual-relay/eeprom.bin"
	StoreSize = 512
	Address = 0
	# "reboot" restarts the host, "exit" leaves it to systemd
	ResetMode = "reboot"

[HTTP]
	# Leave empty to disable the status page
	Addr = ":8080"
`
