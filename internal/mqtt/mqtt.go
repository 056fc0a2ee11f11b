// Package mqtt is the messaging side of the module: a Homie 3 device with a
// single node, carried over an MQTT broker.
package mqtt

import (
	"strconv"
	"strings"
	"time"
)

// Homie device and node identity.
const (
	HomieVersion = "3.0.1"
	NodeID       = "dual"
	NodeName     = "Dual relay"
	NodeType     = "sonoffdual"
	FirmwareName = "dual-relay"

	DefaultBaseTopic = "homie/"
)

// FirmwareVersion is injected at build time via -ldflags.
var FirmwareVersion = "dev"

// Device lifecycle states published on $state.
const (
	StateInit         = "init"
	StateReady        = "ready"
	StateDisconnected = "disconnected"
	StateLost         = "lost"
)

// Message is one MQTT publication.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// EventType distinguishes events delivered to the control loop.
type EventType int

const (
	// EventConnected fires after every successful (re)connection, once the
	// device has been advertised.
	EventConnected EventType = iota + 1
	// EventPropertySet carries a value written to a settable property.
	EventPropertySet
)

// Event is something the broker side wants the control loop to handle.
type Event struct {
	Type     EventType
	Property string
	Value    string
}

// Property describes one node property for the advertisement.
type Property struct {
	ID       string
	Name     string
	Settable bool
}

// Device addresses the topics of one Homie device.
type Device struct {
	BaseTopic string // e.g. "homie/", always with trailing slash
	ID        string
	Name      string
}

// Topic joins parts below the device topic.
func (d Device) Topic(parts ...string) string {
	base := d.BaseTopic
	if base == "" {
		base = DefaultBaseTopic
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + d.ID + "/" + strings.Join(parts, "/")
}

// PropertyTopic is where a property value is published.
func (d Device) PropertyTopic(property string) string {
	return d.Topic(NodeID, property)
}

// SetTopic is where controllers write a settable property.
func (d Device) SetTopic(property string) string {
	return d.Topic(NodeID, property, "set")
}

// SetFilter subscribes to every settable property of the node.
func (d Device) SetFilter() string {
	return d.Topic(NodeID, "+", "set")
}

// ParseSetTopic extracts the property from a set topic.
func (d Device) ParseSetTopic(topic string) (string, bool) {
	prefix := d.Topic(NodeID) + "/"
	rest, ok := strings.CutPrefix(topic, prefix)
	if !ok {
		return "", false
	}
	property, ok := strings.CutSuffix(rest, "/set")
	if !ok || property == "" || strings.Contains(property, "/") {
		return "", false
	}
	return property, true
}

// StateMessage publishes the device lifecycle state.
func StateMessage(d Device, state string) Message {
	return Message{Topic: d.Topic("$state"), Payload: []byte(state), QoS: 1, Retained: true}
}

// ValueMessage publishes a property value.
func ValueMessage(d Device, property, value string) Message {
	return Message{Topic: d.PropertyTopic(property), Payload: []byte(value), QoS: 1, Retained: true}
}

// Advertisement returns the retained attribute messages that describe the
// device, its node and every property.
func Advertisement(d Device, props []Property) []Message {
	attr := func(topic, value string) Message {
		return Message{Topic: topic, Payload: []byte(value), QoS: 1, Retained: true}
	}

	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}

	name := d.Name
	if name == "" {
		name = d.ID
	}

	msgs := []Message{
		attr(d.Topic("$homie"), HomieVersion),
		attr(d.Topic("$name"), name),
		attr(d.Topic("$nodes"), NodeID),
		attr(d.Topic("$extensions"), ""),
		attr(d.Topic("$fw", "name"), FirmwareName),
		attr(d.Topic("$fw", "version"), FirmwareVersion),
		attr(d.Topic(NodeID, "$name"), NodeName),
		attr(d.Topic(NodeID, "$type"), NodeType),
		attr(d.Topic(NodeID, "$properties"), strings.Join(ids, ",")),
	}
	for _, p := range props {
		pname := p.Name
		if pname == "" {
			pname = p.ID
		}
		msgs = append(msgs,
			attr(d.Topic(NodeID, p.ID, "$name"), pname),
			attr(d.Topic(NodeID, p.ID, "$datatype"), "boolean"),
			attr(d.Topic(NodeID, p.ID, "$settable"), strconv.FormatBool(p.Settable)),
			attr(d.Topic(NodeID, p.ID, "$retained"), "true"),
		)
	}
	return msgs
}

// StatsMessages reports uptime and the reporting interval.
func StatsMessages(d Device, uptime, interval time.Duration) []Message {
	return []Message{
		{Topic: d.Topic("$stats", "interval"), Payload: []byte(strconv.FormatInt(int64(interval.Seconds()), 10)), QoS: 1, Retained: true},
		{Topic: d.Topic("$stats", "uptime"), Payload: []byte(strconv.FormatInt(int64(uptime.Seconds()), 10)), QoS: 1, Retained: true},
	}
}
