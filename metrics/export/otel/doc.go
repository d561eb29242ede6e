// Package otel provides OpenTelemetry metric bindings for engine counters
// and histograms.
//
// [NewExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per histogram bucket. A single callback reads
// the engine's metrics snapshot on each collection cycle. Callers supply
// the Meter; this package never owns a MeterProvider.
package otel
