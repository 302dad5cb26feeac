package vigil

import "go.uber.org/zap"

// Callback is a side-effecting operation invoked when an escalation
// level is reached. Callbacks run on the monitor goroutine, so they
// must be safe to invoke from a goroutine other than the one that
// registered them, must not call [Watchdog.Stop] from within
// themselves, and should not block indefinitely. A fatal callback that
// terminates the process is expected and acceptable.
type Callback func()

// MetricsHook defines hooks for observing escalation and reset events.
// Both methods are invoked on the monitor goroutine: OnEscalate after
// each successful level advance, before that level's callback runs,
// and OnReset when the monitor first observes that a notification has
// ended a non-OK excursion.
type MetricsHook interface {
	OnEscalate(from, to Level)
	OnReset(from Level)
}

// Options holds configuration options for the [Watchdog].
type Options struct {
	OnWarn  Callback
	OnError Callback
	OnFatal Callback
	Logger  *zap.SugaredLogger
	Metrics MetricsHook
}

// Option is a function that configures [Options].
type Option func(*Options)

// WithOnWarn sets the callback invoked when a single notification
// interval passes without a notification.
func WithOnWarn(cb Callback) Option {
	return func(o *Options) {
		o.OnWarn = cb
	}
}

// WithOnError sets the callback invoked when two notification
// intervals pass without a notification.
func WithOnError(cb Callback) Option {
	return func(o *Options) {
		o.OnError = cb
	}
}

// WithOnFatal sets the callback invoked when three notification
// intervals pass without a notification.
func WithOnFatal(cb Callback) Option {
	return func(o *Options) {
		o.OnFatal = cb
	}
}

// WithLogger sets the logger used for lifecycle and escalation events.
// The notify path never logs. Defaults to a nop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetricsHook sets the metrics hook for escalation and reset
// events.
func WithMetricsHook(hook MetricsHook) Option {
	return func(o *Options) {
		o.Metrics = hook
	}
}
