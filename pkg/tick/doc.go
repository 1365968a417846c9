// Package tick provides the periodic time base both units count in.
//
// A Source delivers ticks to a single callback. A Counter attaches to a
// Source and lets the control thread block for a number of ticks:
//
//	counter := tick.NewCounter(tick.NewTicker())
//	counter.WaitTicks(ctx, 15) // starts the source, waits, stops it
//
// The tick count is the only value shared between the tick callback and the
// control thread. It is held in an atomic cell and only reachable through
// WaitTicks.
//
// Recorder is a Waiter that returns immediately and records every request,
// for tests and fast simulation.
package tick
