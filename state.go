package vigil

import (
	"sync/atomic"
	"time"
)

// levelBits is the number of low bits of the state word that carry the
// escalation level. The remaining 62 bits carry the last notification
// time as nanoseconds since the watchdog was created, which overflows
// after roughly 146 years.
const (
	levelBits = 2
	levelMask = 1<<levelBits - 1
)

// timingState is the single piece of state shared between the
// notifying goroutine and the monitor goroutine. The last notification
// time and the escalation level are packed into one atomic word so
// that neither side can observe a torn combination, and so that a
// notification invalidates any in-flight escalation attempt:
// tryAdvance compares the whole word, timestamp included.
type timingState struct {
	base time.Time
	word atomic.Uint64
}

// newTimingState creates the shared state with the first notification
// already recorded, so a watchdog is considered alive from the moment
// it is created rather than from the first notify.
func newTimingState() *timingState {
	s := &timingState{base: time.Now()}
	s.recordNotify()
	return s
}

func pack(offset time.Duration, level Level) uint64 {
	return uint64(offset)<<levelBits | uint64(level)
}

func unpack(w uint64) (time.Duration, Level) {
	return time.Duration(w >> levelBits), Level(w & levelMask)
}

// recordNotify marks the watched code as alive now and resets the
// escalation level. Wait-free: a single atomic store.
func (s *timingState) recordNotify() {
	s.word.Store(pack(time.Since(s.base), LevelOK))
}

// snapshot returns the raw state word together with the time elapsed
// since the last notification and the level in effect. The raw word is
// the token a subsequent tryAdvance validates against.
func (s *timingState) snapshot() (snap uint64, elapsed time.Duration, level Level) {
	snap = s.word.Load()
	offset, level := unpack(snap)
	return snap, time.Since(s.base) - offset, level
}

// level returns the current escalation level.
func (s *timingState) level() Level {
	_, level := unpack(s.word.Load())
	return level
}

// tryAdvance raises the escalation level to the given level, keeping
// the notification timestamp. It fails if the state no longer matches
// snap, which happens exactly when a notification has been recorded
// since the snapshot was taken; the notification is authoritative and
// the caller must abandon the escalation.
func (s *timingState) tryAdvance(snap uint64, to Level) bool {
	offset, _ := unpack(snap)
	return s.word.CompareAndSwap(snap, pack(offset, to))
}
