// Package prometheus renders engine metrics in Prometheus text exposition
// format.
//
// [NewExporter] accepts an engine and exposes an [net/http.Handler] serving
// all counters and histograms. Counter names are prefixed authcache_*_total;
// the single histogram is authcache_verify_latency_seconds. Nothing is
// registered in a global Prometheus registry; callers mount the Handler.
package prometheus
