// Package otel publishes session metrics as OpenTelemetry observable instruments.
//
// [NewExporter] creates one Int64ObservableCounter per session counter and one
// Int64ObservableGauge per latency bucket. A single callback reads
// [sessiongate.Manager.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate session state.
package otel
