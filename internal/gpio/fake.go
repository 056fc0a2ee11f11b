package gpio

import "errors"

// FakePort is a test double that returns scripted button levels and records
// relay writes.
type FakePort struct {
	// Samples contains scripted raw levels to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Outputs holds the last level written to each relay.
	Outputs [Lines]bool

	// Writes records every successful Set call in order.
	Writes []Write

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// Sample represents a single reading of both button lines (raw levels, true = high).
type Sample [Lines]bool

// Released is the idle level of both pulled-up buttons.
var Released = Sample{true, true}

// Write is one recorded relay write.
type Write struct {
	Index  int
	Active bool
}

// NewFakePort creates a FakePort with the given samples.
func NewFakePort(samples []Sample) *FakePort {
	return &FakePort{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakePort) Read() ([Lines]bool, error) {
	if f.ReadError != nil {
		return [Lines]bool{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return [Lines]bool{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Set records the relay write.
func (f *FakePort) Set(index int, active bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	if err := validIndex(index); err != nil {
		return err
	}
	f.Outputs[index] = active
	f.Writes = append(f.Writes, Write{Index: index, Active: active})
	return nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the samples and clears recorded writes.
func (f *FakePort) Reset() {
	f.index = 0
	f.Closed = false
	f.Outputs = [Lines]bool{}
	f.Writes = nil
}
