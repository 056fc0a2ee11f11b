package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakePortRead(t *testing.T) {
	samples := []Sample{
		{true, false},
		{false, true},
		{false, false},
	}

	f := NewFakePort(samples)

	for i, want := range samples {
		got, err := f.Read()
		require.NoError(t, err, "sample %d", i)
		assert.Equal(t, [Lines]bool(want), got, "sample %d", i)
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, [Lines]bool{false, false}, got)
}

func TestFakePortNoSamples(t *testing.T) {
	f := NewFakePort(nil)

	_, err := f.Read()
	assert.Error(t, err)
}

func TestFakePortReadError(t *testing.T) {
	f := NewFakePort([]Sample{Released})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	assert.EqualError(t, err, "simulated error")
}

func TestFakePortSet(t *testing.T) {
	f := NewFakePort(nil)

	require.NoError(t, f.Set(1, true))
	require.NoError(t, f.Set(0, false))

	assert.Equal(t, [Lines]bool{false, true}, f.Outputs)
	assert.Equal(t, []Write{{Index: 1, Active: true}, {Index: 0, Active: false}}, f.Writes)
}

func TestFakePortSetOutOfRange(t *testing.T) {
	f := NewFakePort(nil)

	assert.Error(t, f.Set(2, true))
	assert.Error(t, f.Set(-1, true))
	assert.Empty(t, f.Writes)
}

func TestFakePortSetError(t *testing.T) {
	f := NewFakePort(nil)
	f.SetError = errors.New("line busy")

	assert.EqualError(t, f.Set(0, true), "line busy")
	assert.False(t, f.Outputs[0])
}

func TestFakePortClose(t *testing.T) {
	f := NewFakePort([]Sample{Released})

	assert.False(t, f.Closed, "should not be closed initially")
	require.NoError(t, f.Close())
	assert.True(t, f.Closed, "should be closed after Close()")
}

func TestFakePortReset(t *testing.T) {
	samples := []Sample{
		{true, false},
		{false, true},
	}

	f := NewFakePort(samples)
	f.Read()
	f.Set(0, true)

	f.Reset()

	got, _ := f.Read()
	assert.Equal(t, [Lines]bool{true, false}, got, "should read first sample again")
	assert.Empty(t, f.Writes)
	assert.False(t, f.Outputs[0])
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("sysfs", "", DefaultButtonPins, DefaultRelayPins)
	assert.ErrorContains(t, err, "unknown gpio driver")

	_, err = OpenInputs("sysfs", "", DefaultButtonPins)
	assert.ErrorContains(t, err, "unknown gpio driver")
}

func TestPortImplementations(t *testing.T) {
	var _ Port = (*FakePort)(nil)
	var _ Port = (*CdevPort)(nil)
	var _ Port = (*PeriphPort)(nil)
	var _ Reader = (*FakePort)(nil)
	var _ Writer = (*FakePort)(nil)
}
