// Package vigil implements a liveness watchdog for long-running work.
//
// A worker under vigil signals that it is still making progress by
// calling [Watchdog.Notify] at regular intervals. If notifications
// stop arriving, a background monitor escalates through warn, error,
// and fatal callbacks, which may produce diagnostics, raise an alarm,
// or abort the process entirely. The notify path is a single atomic
// store, safe to call at arbitrary frequency from the hot loop of the
// monitored work, and never contends with the monitor.
//
// Escalation advances one level per missed interval: warn after one
// interval of silence, error after two, fatal after three. Each level
// fires at most once per excursion, in order, and any notification
// immediately resets the watchdog to its healthy state.
//
// If the worker knows it will be unable to notify for longer than
// usual, for example ahead of a blocking request or a CPU-intensive
// calculation, it should pre-declare this with [Watchdog.SetInterval]
// rather than faking notifications, restoring the shorter interval
// once the operation completes.
package vigil
