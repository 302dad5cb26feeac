package vigil

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidInterval is returned by [New] and [Watchdog.SetInterval]
// when given a non-positive notification interval.
var ErrInvalidInterval = errors.New("vigil: notification interval must be positive")

// The monitor polls at a fraction of the notification interval so that
// responsiveness scales with the configured timeout, clamped so it
// never busy-spins on very short intervals and never lags badly on
// very long ones.
const (
	pollDivisor     = 4
	minPollInterval = 10 * time.Millisecond
	maxPollInterval = time.Second
)

// Watchdog keeps vigil over a single piece of long-running work. The
// worker under vigil calls [Watchdog.Notify] from its own goroutine;
// a background monitor goroutine, spawned by [New], escalates through
// the configured callbacks when notifications stop arriving.
//
// A Watchdog must be created with [New] and released with
// [Watchdog.Stop].
type Watchdog struct {
	id       uuid.UUID
	state    *timingState
	interval atomic.Int64 // nanoseconds, mutable via SetInterval

	callbacks [LevelFatal + 1]Callback
	metrics   MetricsHook
	logger    *zap.SugaredLogger

	// lastSeen is the level observed on the previous check. It is
	// touched only by the monitor goroutine and exists to detect
	// resets for the metrics hook.
	lastSeen Level

	stopOnce sync.Once
	stopping chan struct{} // closed by Stop to signal the monitor
	stopped  chan struct{} // closed by the monitor on exit
}

// New creates a [Watchdog] expecting a notification at least every
// interval and starts its monitor goroutine. The watchdog is
// considered alive from the moment of creation; the first escalation
// can only happen once a full interval has passed with no call to
// [Watchdog.Notify].
func New(interval time.Duration, opts ...Option) (*Watchdog, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}

	w := &Watchdog{
		id:       uuid.New(),
		state:    newTimingState(),
		metrics:  o.Metrics,
		logger:   o.Logger,
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	w.interval.Store(int64(interval))
	w.callbacks[LevelWarn] = o.OnWarn
	w.callbacks[LevelError] = o.OnError
	w.callbacks[LevelFatal] = o.OnFatal

	w.logger.Infof("[%s] vigil started: interval=%s", w.id, interval)
	go w.watch()

	return w, nil
}

// Notify signals that the watched code is still active and alive,
// resetting the escalation level. It is wait-free, a single atomic
// store, and safe to call at arbitrary frequency from the goroutine
// that is actively processing work. It should be called from that
// goroutine directly, not from a dedicated notifier goroutine,
// otherwise deadlocks in the work itself will not be caught.
func (w *Watchdog) Notify() {
	w.state.recordNotify()
}

// SetInterval changes the interval between expected notifications.
// Useful when the worker is about to block on a long operation, such
// as a blocking network request or a CPU-intensive calculation; the
// worker should restore the shorter interval once the operation
// completes. Changing the interval counts as a notification, so the
// watchdog cannot escalate at the moment of the change.
func (w *Watchdog) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	w.interval.Store(int64(interval))
	w.Notify()
	return nil
}

// Level returns the current escalation level.
func (w *Watchdog) Level() Level {
	return w.state.level()
}

// Stop signals the monitor goroutine to exit and blocks until it has
// done so. After Stop returns no callback will fire and the monitor
// goroutine has fully exited. Stop is idempotent and safe to call from
// multiple goroutines; every call blocks until shutdown is complete.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopping)
	})
	<-w.stopped
}

// watch is the monitor loop. It polls the shared timing state on a
// cadence derived from the current interval and escalates one level at
// a time as notifications go missing.
func (w *Watchdog) watch() {
	defer close(w.stopped)

	timer := time.NewTimer(w.pollInterval())
	defer timer.Stop()

	for {
		select {
		case <-w.stopping:
			w.logger.Infof("[%s] vigil stopped at level %s", w.id, w.state.level())
			return
		case <-timer.C:
			w.check()
			timer.Reset(w.pollInterval())
		}
	}
}

// pollInterval derives the monitor's poll cadence from the interval
// currently in effect.
func (w *Watchdog) pollInterval() time.Duration {
	d := time.Duration(w.interval.Load()) / pollDivisor
	return min(max(d, minPollInterval), maxPollInterval)
}

// check runs a single monitor tick. If the elapsed silence calls for a
// higher level it escalates one level per step, re-validating against
// the shared state before each step, so that a slow or delayed tick
// never skips a level's callback and a concurrent notification is
// never followed by a stale one.
func (w *Watchdog) check() {
	interval := time.Duration(w.interval.Load())

	for {
		snap, elapsed, level := w.state.snapshot()

		if level < w.lastSeen && w.metrics != nil {
			w.metrics.OnReset(w.lastSeen)
		}
		w.lastSeen = level

		if target := targetLevel(elapsed, interval); target <= level {
			return
		}

		next := level + 1
		if !w.state.tryAdvance(snap, next) {
			// A notification won the race; the reset is authoritative.
			return
		}
		w.lastSeen = next
		w.escalated(level, next, elapsed)
	}
}

// targetLevel maps silence of the given length onto the level it
// warrants: one level per full interval, capped at fatal.
func targetLevel(elapsed, interval time.Duration) Level {
	switch {
	case elapsed < interval:
		return LevelOK
	case elapsed < 2*interval:
		return LevelWarn
	case elapsed < 3*interval:
		return LevelError
	default:
		return LevelFatal
	}
}

// escalated logs the transition and invokes the hook and the callback
// bound to the newly entered level, all on the monitor goroutine.
func (w *Watchdog) escalated(from, to Level, elapsed time.Duration) {
	switch to {
	case LevelWarn:
		w.logger.Warnf("[%s] missed a notification after %s - temporary glitch or slowdown?", w.id, elapsed)
	case LevelError:
		w.logger.Errorf("[%s] missed multiple notifications after %s - stall suspected", w.id, elapsed)
	case LevelFatal:
		w.logger.Errorf("[%s] still unresponsive after %s - likely stalled", w.id, elapsed)
	}

	if w.metrics != nil {
		w.metrics.OnEscalate(from, to)
	}
	if cb := w.callbacks[to]; cb != nil {
		cb()
	}
}
