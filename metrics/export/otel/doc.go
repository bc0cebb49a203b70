// Package otel publishes Engine metrics through an OpenTelemetry Meter.
//
// [NewExporter] registers one Int64ObservableCounter per Engine counter and
// one Int64ObservableGauge per latency bucket. A single callback reads
// [dashAuth.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate Engine state.
package otel
