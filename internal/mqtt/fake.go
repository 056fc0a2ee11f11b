package mqtt

import "time"

// Emission is one recorded property value.
type Emission struct {
	Property string
	Value    string
}

// FakeClient records emitted values for test assertions and lets tests
// inject broker events.
type FakeClient struct {
	// Emitted contains every Emit call in order.
	Emitted []Emission

	// Stats records each PublishStats call's uptime.
	Stats []time.Duration

	// Connected controls the return value of IsConnected.
	Connected bool

	// Configured controls the return value of IsConfigured.
	Configured bool

	// Closed tracks if Close was called.
	Closed bool

	events chan Event
}

// NewFakeClient creates a configured, disconnected FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Configured: true,
		events:     make(chan Event, 64),
	}
}

// Emit records the value.
func (f *FakeClient) Emit(property, value string) {
	f.Emitted = append(f.Emitted, Emission{Property: property, Value: value})
}

// PublishStats records the uptime.
func (f *FakeClient) PublishStats(uptime, interval time.Duration) {
	f.Stats = append(f.Stats, uptime)
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// IsConfigured reports whether the fake client is "configured".
func (f *FakeClient) IsConfigured() bool {
	return f.Configured
}

// Events returns the injected event stream.
func (f *FakeClient) Events() <-chan Event {
	return f.events
}

// Inject queues an event as if it came from the broker.
func (f *FakeClient) Inject(e Event) {
	f.events <- e
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// Values returns the emitted values for one property, oldest first.
func (f *FakeClient) Values(property string) []string {
	var out []string
	for _, e := range f.Emitted {
		if e.Property == property {
			out = append(out, e.Value)
		}
	}
	return out
}

// Reset clears recorded emissions.
func (f *FakeClient) Reset() {
	f.Emitted = nil
	f.Stats = nil
	f.Closed = false
}
