package logic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Millisecond)
}

// seededChannel returns a channel baselined as released with the initial edge consumed.
func seededChannel(t *testing.T) *ButtonChannel {
	t.Helper()
	b := NewButtonChannel(0, 17, 60*time.Millisecond)
	_, ok := b.Poll(true, t0)
	require.True(t, ok)
	_, ok = b.TakePending()
	require.True(t, ok)
	return b
}

func TestNewButtonChannelDefaultInterval(t *testing.T) {
	b := NewButtonChannel(1, 9, 0)
	assert.Equal(t, DefaultDebounce, b.interval)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, 9, b.Pin)
	assert.False(t, b.Seeded())
}

func TestFirstPollPublishesInitialState(t *testing.T) {
	b := NewButtonChannel(1, 9, 60*time.Millisecond)

	// Line low at boot: button held down
	e, ok := b.Poll(false, t0)
	require.True(t, ok)
	assert.Equal(t, Edge{Channel: 1, Pressed: true, Time: t0}, e)
	assert.True(t, b.Pressed)
	assert.True(t, b.HasPending())

	_, ok = b.Poll(false, ms(100))
	assert.False(t, ok, "steady level must not produce another edge")
}

func TestPressAcceptedAfterInterval(t *testing.T) {
	b := seededChannel(t)

	_, ok := b.Poll(false, ms(100))
	assert.False(t, ok, "level change starts the window")
	_, ok = b.Poll(false, ms(159))
	assert.False(t, ok, "59ms is not enough")
	assert.False(t, b.Pressed)

	e, ok := b.Poll(false, ms(160))
	require.True(t, ok)
	assert.True(t, e.Pressed)
	assert.Equal(t, ms(160), e.Time)
	assert.True(t, b.Pressed)

	_, ok = b.Poll(false, ms(300))
	assert.False(t, ok)
}

func TestReleaseAcceptedAfterInterval(t *testing.T) {
	b := seededChannel(t)
	b.Poll(false, ms(10))
	_, ok := b.Poll(false, ms(70))
	require.True(t, ok)

	b.Poll(true, ms(500))
	e, ok := b.Poll(true, ms(560))
	require.True(t, ok)
	assert.False(t, e.Pressed)
}

func TestGlitchRejected(t *testing.T) {
	b := seededChannel(t)

	b.Poll(false, ms(10))
	b.Poll(false, ms(40))
	b.Poll(true, ms(50)) // bounced back before 60ms
	_, ok := b.Poll(true, ms(200))
	assert.False(t, ok)
	assert.False(t, b.Pressed)
	assert.False(t, b.HasPending())
}

func TestChatterRestartsWindow(t *testing.T) {
	b := seededChannel(t)

	// Oscillates every 20ms, then settles low at 100ms
	for i, raw := range []bool{false, true, false, true, false} {
		_, ok := b.Poll(raw, ms(20*i))
		assert.False(t, ok, "sample %d", i)
	}
	b.Poll(false, ms(100))
	_, ok := b.Poll(false, ms(139))
	assert.False(t, ok, "window restarted at 80ms")
	e, ok := b.Poll(false, ms(140))
	require.True(t, ok)
	assert.True(t, e.Pressed)
}

func TestLatestPendingWins(t *testing.T) {
	b := seededChannel(t)

	b.Poll(false, ms(0))
	_, ok := b.Poll(false, ms(60))
	require.True(t, ok)
	b.Poll(true, ms(100))
	_, ok = b.Poll(true, ms(160))
	require.True(t, ok)

	// Press was never taken: only the release survives
	e, ok := b.TakePending()
	require.True(t, ok)
	assert.False(t, e.Pressed)
	assert.Equal(t, ms(160), e.Time)

	_, ok = b.TakePending()
	assert.False(t, ok)
}

// TestAcceptedOnlyAfterStableInterval drives random sample streams and checks
// that every accepted change was preceded by the same raw level for at least
// the debounce interval.
func TestAcceptedOnlyAfterStableInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	interval := 60 * time.Millisecond

	for run := 0; run < 200; run++ {
		b := NewButtonChannel(0, 0, interval)
		type sample struct {
			raw bool
			at  time.Time
		}
		var history []sample
		now := t0
		raw := true
		stable := true

		for i := 0; i < 300; i++ {
			now = now.Add(time.Duration(1+rng.Intn(25)) * time.Millisecond)
			if rng.Intn(4) == 0 {
				raw = !raw
			}
			history = append(history, sample{raw, now})

			e, ok := b.Poll(raw, now)
			if i == 0 {
				require.True(t, ok)
				stable = !raw
				continue
			}
			if !ok {
				assert.Equal(t, stable, b.Pressed, "run %d sample %d: state moved without an edge", run, i)
				continue
			}

			require.NotEqual(t, stable, e.Pressed, "run %d sample %d: edge without a change", run, i)
			stable = e.Pressed

			// Walk back: the raw level must equal !Pressed for the whole window
			for j := len(history) - 1; j >= 0; j-- {
				if history[j].raw != raw {
					assert.GreaterOrEqual(t, now.Sub(history[j+1].at), interval,
						"run %d sample %d: accepted after %v", run, i, now.Sub(history[j+1].at))
					break
				}
			}
		}
	}
}
