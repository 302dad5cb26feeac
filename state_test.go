package vigil

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		offset time.Duration
		level  Level
	}{
		"zero offset ok":     {offset: 0, level: LevelOK},
		"zero offset fatal":  {offset: 0, level: LevelFatal},
		"small offset warn":  {offset: 25 * time.Millisecond, level: LevelWarn},
		"large offset error": {offset: 400 * 24 * time.Hour, level: LevelError},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			offset, level := unpack(pack(tt.offset, tt.level))
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestTimingState_AliveAtCreation(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := newTimingState()

		_, elapsed, level := s.snapshot()
		assert.Equal(t, time.Duration(0), elapsed)
		assert.Equal(t, LevelOK, level)
	})
}

func TestTimingState_ElapsedGrows(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := newTimingState()

		time.Sleep(70 * time.Millisecond)
		_, elapsed, _ := s.snapshot()
		assert.Equal(t, 70*time.Millisecond, elapsed)

		s.recordNotify()
		_, elapsed, _ = s.snapshot()
		assert.Equal(t, time.Duration(0), elapsed)
	})
}

func TestTimingState_TryAdvance(t *testing.T) {
	t.Parallel()

	t.Run("advances from a fresh snapshot", func(t *testing.T) {
		t.Parallel()

		s := newTimingState()

		snap, _, level := s.snapshot()
		require.Equal(t, LevelOK, level)

		assert.True(t, s.tryAdvance(snap, LevelWarn))
		assert.Equal(t, LevelWarn, s.level())
	})

	t.Run("keeps the notification timestamp", func(t *testing.T) {
		t.Parallel()

		synctest.Test(t, func(t *testing.T) {
			s := newTimingState()

			time.Sleep(150 * time.Millisecond)
			snap, _, _ := s.snapshot()
			require.True(t, s.tryAdvance(snap, LevelWarn))

			_, elapsed, level := s.snapshot()
			assert.Equal(t, 150*time.Millisecond, elapsed)
			assert.Equal(t, LevelWarn, level)
		})
	})

	t.Run("fails after an interleaved notify", func(t *testing.T) {
		t.Parallel()

		s := newTimingState()

		snap, _, _ := s.snapshot()

		// A notification between snapshot and advance must win, even
		// though the level it resets to equals the level observed.
		s.recordNotify()

		assert.False(t, s.tryAdvance(snap, LevelWarn))
		assert.Equal(t, LevelOK, s.level())
	})

	t.Run("fails on a stale level", func(t *testing.T) {
		t.Parallel()

		s := newTimingState()

		snap, _, _ := s.snapshot()
		require.True(t, s.tryAdvance(snap, LevelWarn))

		assert.False(t, s.tryAdvance(snap, LevelError))
		assert.Equal(t, LevelWarn, s.level())
	})

	t.Run("walks one level at a time to fatal", func(t *testing.T) {
		t.Parallel()

		s := newTimingState()

		for _, want := range []Level{LevelWarn, LevelError, LevelFatal} {
			snap, _, level := s.snapshot()
			require.Equal(t, want-1, level)
			require.True(t, s.tryAdvance(snap, want))
		}
		assert.Equal(t, LevelFatal, s.level())
	})
}
