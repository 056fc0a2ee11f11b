package node

import (
	"fmt"

	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/mqtt"
)

// ButtonProperty names the read-only property of button i.
func ButtonProperty(i int) string {
	return fmt.Sprintf("button%d", i)
}

// RelayProperty names the settable sustained-state property of relay i.
func RelayProperty(i int) string {
	return fmt.Sprintf("relay%d", i)
}

// MomentaryProperty names the settable pulse property of relay i.
func MomentaryProperty(i int) string {
	return fmt.Sprintf("relay%dmomentary", i)
}

// Properties lists everything the node advertises.
func Properties() []mqtt.Property {
	var props []mqtt.Property
	for i := 0; i < logic.Channels; i++ {
		props = append(props,
			mqtt.Property{ID: RelayProperty(i), Name: fmt.Sprintf("Relay %d", i), Settable: true},
			mqtt.Property{ID: MomentaryProperty(i), Name: fmt.Sprintf("Relay %d momentary", i), Settable: true},
		)
	}
	for i := 0; i < logic.Channels; i++ {
		props = append(props, mqtt.Property{ID: ButtonProperty(i), Name: fmt.Sprintf("Button %d", i)})
	}
	return props
}

// ParseBool reads a property value: "true" and "1" are active, anything else is not.
func ParseBool(value string) bool {
	return value == "true" || value == "1"
}

// FormatBool renders a value the way ParseBool reads it.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type command struct {
	relay     int
	momentary bool
}

func commandTable() map[string]command {
	table := make(map[string]command, 2*logic.Channels)
	for i := 0; i < logic.Channels; i++ {
		table[RelayProperty(i)] = command{relay: i}
		table[MomentaryProperty(i)] = command{relay: i, momentary: true}
	}
	return table
}
