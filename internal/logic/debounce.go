package logic

import "time"

// ButtonChannel tracks debounce state for a single active-low button input.
type ButtonChannel struct {
	Index int
	Pin   int

	// Raw is the last sampled line level (true = high = released).
	Raw bool
	// Pressed is the current stable (debounced) logical state.
	Pressed bool
	// LastChange is when Raw last changed.
	LastChange time.Time

	interval time.Duration
	seeded   bool

	// Latest accepted edge not yet taken by the publisher. Older ones are overwritten.
	pending    Edge
	hasPending bool
}

// NewButtonChannel creates a channel that accepts a level once it has been
// stable for interval.
func NewButtonChannel(index, pin int, interval time.Duration) *ButtonChannel {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &ButtonChannel{
		Index:    index,
		Pin:      pin,
		interval: interval,
	}
}

// Poll takes a raw sample and returns the edge accepted by this sample, if any.
//
// The first sample seeds the stable state and always yields an edge so the
// initial state gets published once. After that a new level must be observed
// continuously for the debounce interval before it replaces the stable state.
func (b *ButtonChannel) Poll(raw bool, now time.Time) (Edge, bool) {
	if !b.seeded {
		b.seeded = true
		b.Raw = raw
		b.LastChange = now
		b.Pressed = !raw
		return b.accept(now), true
	}

	if raw != b.Raw {
		// Line moved, restart the stability window
		b.Raw = raw
		b.LastChange = now
		return Edge{}, false
	}

	pressed := !raw
	if pressed == b.Pressed {
		return Edge{}, false
	}
	if now.Sub(b.LastChange) < b.interval {
		return Edge{}, false
	}

	b.Pressed = pressed
	return b.accept(now), true
}

func (b *ButtonChannel) accept(now time.Time) Edge {
	e := Edge{Channel: b.Index, Pressed: b.Pressed, Time: now}
	b.pending = e
	b.hasPending = true
	return e
}

// TakePending returns the latest unpublished edge and clears it.
func (b *ButtonChannel) TakePending() (Edge, bool) {
	if !b.hasPending {
		return Edge{}, false
	}
	e := b.pending
	b.pending = Edge{}
	b.hasPending = false
	return e, true
}

// HasPending reports whether an edge is waiting to be published.
func (b *ButtonChannel) HasPending() bool {
	return b.hasPending
}

// Seeded reports whether the channel has seen its first sample.
func (b *ButtonChannel) Seeded() bool {
	return b.seeded
}
