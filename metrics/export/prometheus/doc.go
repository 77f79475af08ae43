// Package prometheus exposes authgate engine metrics through
// prometheus/client_golang.
//
// [NewPrometheusExporter] wraps an [authgate.Engine] in a Collector registered
// on a private registry; [PrometheusExporter.Handler] serves it. Counter
// names are authgate_*_total and the single histogram is
// authgate_provider_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry; callers mount the
//     Handler or pass the Collector to their own registry.
//   - Mutate engine state.
package prometheus
