package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDevice = Device{BaseTopic: "homie/", ID: "hall-switch", Name: "Hall switch"}

func TestDeviceTopics(t *testing.T) {
	assert.Equal(t, "homie/hall-switch/$state", testDevice.Topic("$state"))
	assert.Equal(t, "homie/hall-switch/dual/button0", testDevice.PropertyTopic("button0"))
	assert.Equal(t, "homie/hall-switch/dual/relay1/set", testDevice.SetTopic("relay1"))
	assert.Equal(t, "homie/hall-switch/dual/+/set", testDevice.SetFilter())
}

func TestDeviceTopicBaseNormalised(t *testing.T) {
	d := Device{ID: "x"}
	assert.Equal(t, "homie/x/$name", d.Topic("$name"))

	d.BaseTopic = "devices"
	assert.Equal(t, "devices/x/$name", d.Topic("$name"))
}

func TestParseSetTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
		ok    bool
	}{
		{"homie/hall-switch/dual/relay0/set", "relay0", true},
		{"homie/hall-switch/dual/relay1momentary/set", "relay1momentary", true},
		{"homie/hall-switch/dual/relay0", "", false},
		{"homie/other/dual/relay0/set", "", false},
		{"homie/hall-switch/dual//set", "", false},
		{"homie/hall-switch/dual/a/b/set", "", false},
		{"homie/hall-switch/other/relay0/set", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := testDevice.ParseSetTopic(tt.topic)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateMessage(t *testing.T) {
	msg := StateMessage(testDevice, StateLost)
	assert.Equal(t, "homie/hall-switch/$state", msg.Topic)
	assert.Equal(t, "lost", string(msg.Payload))
	assert.True(t, msg.Retained)
	assert.Equal(t, byte(1), msg.QoS)
}

func TestValueMessage(t *testing.T) {
	msg := ValueMessage(testDevice, "button1", "true")
	assert.Equal(t, "homie/hall-switch/dual/button1", msg.Topic)
	assert.Equal(t, "true", string(msg.Payload))
	assert.True(t, msg.Retained)
}

func TestAdvertisement(t *testing.T) {
	props := []Property{
		{ID: "button0", Name: "Button 0"},
		{ID: "relay0", Name: "Relay 0", Settable: true},
	}
	msgs := Advertisement(testDevice, props)

	got := map[string]string{}
	for _, m := range msgs {
		assert.True(t, m.Retained, m.Topic)
		got[m.Topic] = string(m.Payload)
	}

	want := map[string]string{
		"homie/hall-switch/$homie":                 HomieVersion,
		"homie/hall-switch/$name":                  "Hall switch",
		"homie/hall-switch/$nodes":                 "dual",
		"homie/hall-switch/$fw/name":               "dual-relay",
		"homie/hall-switch/dual/$type":             "sonoffdual",
		"homie/hall-switch/dual/$properties":       "button0,relay0",
		"homie/hall-switch/dual/button0/$settable": "false",
		"homie/hall-switch/dual/relay0/$settable":  "true",
		"homie/hall-switch/dual/relay0/$datatype":  "boolean",
		"homie/hall-switch/dual/button0/$name":     "Button 0",
	}
	for topic, value := range want {
		assert.Equal(t, value, got[topic], topic)
	}
}

func TestAdvertisementNameFallsBackToID(t *testing.T) {
	msgs := Advertisement(Device{ID: "bare"}, nil)
	for _, m := range msgs {
		if m.Topic == "homie/bare/$name" {
			assert.Equal(t, "bare", string(m.Payload))
			return
		}
	}
	t.Fatal("no $name attribute")
}

func TestStatsMessages(t *testing.T) {
	msgs := StatsMessages(testDevice, 90*time.Second+500*time.Millisecond, time.Minute)
	require.Len(t, msgs, 2)
	assert.Equal(t, "homie/hall-switch/$stats/interval", msgs[0].Topic)
	assert.Equal(t, "60", string(msgs[0].Payload))
	assert.Equal(t, "homie/hall-switch/$stats/uptime", msgs[1].Topic)
	assert.Equal(t, "90", string(msgs[1].Payload))
}

func TestRealClientOffline(t *testing.T) {
	c, err := NewRealClient(Options{Device: testDevice, BufferSize: 2}, nil)
	require.NoError(t, err)

	assert.False(t, c.IsConfigured())
	assert.False(t, c.IsConnected())

	// Emits while offline are held, oldest dropped
	c.Emit("button0", "true")
	c.Emit("button0", "false")
	c.Emit("button1", "true")
	assert.Equal(t, 2, c.outbox.len())

	c.PublishStats(time.Minute, time.Minute)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "second close is a no-op")
}

func TestFakeClient(t *testing.T) {
	f := NewFakeClient()
	assert.True(t, f.IsConfigured())
	assert.False(t, f.IsConnected())

	f.Emit("button0", "true")
	f.Emit("relay0", "false")
	f.Emit("button0", "false")
	assert.Equal(t, []string{"true", "false"}, f.Values("button0"))

	f.Inject(Event{Type: EventPropertySet, Property: "relay0", Value: "1"})
	e := <-f.Events()
	assert.Equal(t, "relay0", e.Property)

	require.NoError(t, f.Close())
	assert.True(t, f.Closed)

	f.Reset()
	assert.Empty(t, f.Emitted)
	assert.False(t, f.Closed)
}
