// Package prometheus publishes session metrics through a client_golang collector.
//
// [Exporter] implements prometheus.Collector and reads a fresh snapshot on every
// scrape. [Exporter.Handler] serves a private registry so nothing lands in the global
// default registry.
//
// # What this package must NOT do
//
//   - Register in prometheus.DefaultRegisterer.
//   - Mutate session state.
package prometheus
